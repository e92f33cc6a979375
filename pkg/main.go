package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pkg "github.com/chirpfeed/chirp/pkg/internal"
	"github.com/chirpfeed/chirp/pkg/internal/database"
	"github.com/chirpfeed/chirp/pkg/internal/http"
	"github.com/chirpfeed/chirp/pkg/internal/identity"
	"github.com/chirpfeed/chirp/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString("  ____ _     _\n / ___| |__ (_)_ __ _ __\n| |   | '_ \\| | '__| '_ \\\n| |___| | | | | |  | |_) |\n \\____|_| |_|_|_|  | .__/\n                   |_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Chirp"), pkg.AppVersion)
	fmt.Printf("The emoji-only microblogging service\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Load the identity provider's session public key
	if reader, err := http.NewSessionTokenReader(viper.GetString("security.session_public_key")); err != nil {
		log.Error().Err(err).Msg("An error occurred when reading session public key. Posting will be disabled.")
	} else {
		http.SReader = reader
		log.Info().Msg("Session public key loaded.")
	}

	// Identity provider client
	services.Accounts = identity.NewClient()

	// Connect to redis for the rate limiter
	if err := services.InitRedis(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connecting to redis.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoLimiterReport)
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
