package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/application/services"
	"github.com/AnantSoni360/Pptvideo/config"
	"github.com/AnantSoni360/Pptvideo/infrastructure/adapters"
	"github.com/AnantSoni360/Pptvideo/infrastructure/gin_interface/controllers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on process environment")
	}

	speechConfig, err := config.GetSpeechConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get speech config")
	}

	avatarConfig, err := config.GetAvatarConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get avatar config")
	}

	gptConfig, err := config.GetGptConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get gpt config")
	}

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	// The pool carries per-slide remote calls only; supervisors and channel
	// plumbing run on plain goroutines, so MaxInFlight bounds concurrency
	// exactly.
	workerPool, err := ants.NewPool(pipelineConfig.MaxInFlight, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(s3Config.Region)},
		SharedConfigState: session.SharedConfigEnable,
	}))

	s3Client := s3.New(sess)
	dynamoClient := dynamodb.New(sess)

	contentFetcher := adapters.NewContentFetcher(zeroLogger)

	deckLoader := adapters.NewPptxLoader(zeroLogger)

	synthesizer := adapters.NewAzureSpeechSynthesizer(contentFetcher, speechConfig, zeroLogger)

	var scriptGenerator outbound.NarrationScriptGeneratorPort
	if gptConfig.Enabled {
		scriptGenerator = adapters.NewGptScriptGenerator(gptConfig, zeroLogger)
	}

	var avatarRenderer outbound.AvatarRendererPort
	if avatarConfig.ApiKey != "" {
		avatarRenderer = adapters.NewDIDAvatarRenderer(contentFetcher, avatarConfig, pipelineConfig.WorkDir, zeroLogger)
	} else {
		zeroLogger.Warn("No avatar service key configured, using the offline card renderer")
		avatarRenderer = adapters.NewSimpleAvatarRenderer(pipelineConfig.WorkDir, zeroLogger)
	}

	compositor := adapters.NewFFmpegClipCompositor(pipelineConfig.WorkDir, zeroLogger)
	assembler := adapters.NewFFmpegVideoAssembler(pipelineConfig.WorkDir, zeroLogger)

	runStore := adapters.NewDynamoRunStore(zeroLogger, dynamoClient, dynamoConfig)
	videoPublisher := adapters.NewS3VideoPublisher(zeroLogger, s3Client, s3Config)

	narrationStage := services.NewNarrationGenerator(zeroLogger, synthesizer, scriptGenerator, workerPool)
	avatarClipStage := services.NewAvatarClipGenerator(zeroLogger, avatarRenderer, compositor, workerPool)

	pipeline := services.NewVideoPipeline(zeroLogger, deckLoader, narrationStage,
		avatarClipStage, assembler, videoPublisher, runStore)

	runController := controllers.NewRunController(zeroLogger, pipeline, runStore, pipelineConfig.WorkDir)

	router := gin.Default()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	runController.RegisterRoutes(router)

	err = router.Run(":8080")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
