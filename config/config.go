package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Database  Database
	Placement Placement
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Placement carries the routing thresholds and class-matching knobs.
type Placement struct {
	SuccessThreshold     float64 // percentage to advance to a harder test
	PassThreshold        float64 // percentage to settle at the current level
	RegularPassThreshold float64 // pass mark for non-placement tests
	PlacementCourseID    uint    // optional, falls back to the is_placement_course flag
	MaxHops              int     // cap on routing steps through the graph
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SUCCESS_THRESHOLD", 80.0)
	viper.SetDefault("PASS_THRESHOLD", 50.0)
	viper.SetDefault("REGULAR_TEST_PASS_THRESHOLD", 60.0)
	viper.SetDefault("MAX_PLACEMENT_HOPS", 8)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Placement.SuccessThreshold = viper.GetFloat64("SUCCESS_THRESHOLD")
	config.Placement.PassThreshold = viper.GetFloat64("PASS_THRESHOLD")
	config.Placement.RegularPassThreshold = viper.GetFloat64("REGULAR_TEST_PASS_THRESHOLD")
	config.Placement.PlacementCourseID = viper.GetUint("PLACEMENT_COURSE_ID")
	config.Placement.MaxHops = viper.GetInt("MAX_PLACEMENT_HOPS")

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil
}
