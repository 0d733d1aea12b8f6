package config

import (
	"errors"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

const (
	StorageBackendLocal = "local"
	StorageBackendMinIO = "minio"
)

type Config struct {
	App       App
	Server    Server
	Mongo     Mongo
	Upload    Upload
	Transcode Transcode
	Events    Events
	Storage   *minio.Client
}

type App struct {
	Environment string
	ServiceName string
}

type Server struct {
	HttpPort string
}

type Mongo struct {
	URL      string
	Database string
}

type Upload struct {
	Dir         string
	Backend     string
	MinIOBucket string
}

type Transcode struct {
	StepDelay time.Duration
	Steps     int
	Formats   []string
}

type Events struct {
	BrokerURL string
	Queue     string
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("app.environment", "develop")
	viper.SetDefault("app.service_name", "video-api")
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.db_name", "video_platform")
	viper.SetDefault("upload.dir", "/tmp")
	viper.SetDefault("upload.backend", StorageBackendLocal)
	viper.SetDefault("transcode.step_delay", "2s")
	viper.SetDefault("transcode.steps", 10)
	viper.SetDefault("transcode.formats", []string{"720p", "480p", "360p"})
	viper.SetDefault("events.queue", "video.jobs")

	_ = viper.BindEnv("mongo.url", "MONGO_URL")
	_ = viper.BindEnv("mongo.db_name", "MONGO_DB_NAME")
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("events.broker_url", "RABBITMQ_URL")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		App: App{
			Environment: viper.GetString("app.environment"),
			ServiceName: viper.GetString("app.service_name"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.port"),
		},
		Mongo: Mongo{
			URL:      viper.GetString("mongo.url"),
			Database: viper.GetString("mongo.db_name"),
		},
		Upload: Upload{
			Dir:         viper.GetString("upload.dir"),
			Backend:     viper.GetString("upload.backend"),
			MinIOBucket: viper.GetString("minio.bucket"),
		},
		Transcode: Transcode{
			StepDelay: viper.GetDuration("transcode.step_delay"),
			Steps:     viper.GetInt("transcode.steps"),
			Formats:   viper.GetStringSlice("transcode.formats"),
		},
		Events: Events{
			BrokerURL: viper.GetString("events.broker_url"),
			Queue:     viper.GetString("events.queue"),
		},
	}

	if cfg.Upload.Backend == StorageBackendMinIO {
		minioClient, err := minio.New(viper.GetString("minio.url"), &minio.Options{
			Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
			Secure: false,
		})
		if err != nil {
			return nil, err
		}
		cfg.Storage = minioClient
	}

	return cfg, nil
}
