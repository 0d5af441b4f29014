package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"murmur.town/web"
)

var logger *log.Logger

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(web.ServeCmd)

	rootCmd.PersistentFlags().Int("port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().
		String("transcription-api-base-url", "http://localhost:8000", "Speech recognition service base URL")
	rootCmd.PersistentFlags().
		String("transcription-api-key", "", "Speech recognition service API key")
	rootCmd.PersistentFlags().
		String("llm-api-base-url", "https://api.openai.com", "Language model service base URL")
	rootCmd.PersistentFlags().
		String("llm-api-key", "", "Language model service API key")
	rootCmd.PersistentFlags().
		String("llm-model", "", "Language model name for translation and replies")
	rootCmd.PersistentFlags().
		String("ffmpeg-path", "ffmpeg", "ffmpeg command, may include wrapper arguments")
	rootCmd.PersistentFlags().
		Int("chunk-seconds", 30, "Maximum chunk length for long uploads")
	rootCmd.PersistentFlags().
		Int("heartbeat-seconds", 50, "Keepalive interval per session")
	rootCmd.PersistentFlags().
		Int64("max-message-bytes", 32<<20, "Largest accepted websocket message")
	rootCmd.PersistentFlags().
		String("work-dir", "", "Directory for temporary audio, empty for the OS default")

	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag(
		"transcription_api_base_url",
		rootCmd.PersistentFlags().Lookup("transcription-api-base-url"),
	)
	viper.BindPFlag(
		"transcription_api_key",
		rootCmd.PersistentFlags().Lookup("transcription-api-key"),
	)
	viper.BindPFlag(
		"llm_api_base_url",
		rootCmd.PersistentFlags().Lookup("llm-api-base-url"),
	)
	viper.BindPFlag(
		"llm_api_key",
		rootCmd.PersistentFlags().Lookup("llm-api-key"),
	)
	viper.BindPFlag(
		"llm_model",
		rootCmd.PersistentFlags().Lookup("llm-model"),
	)
	viper.BindPFlag(
		"ffmpeg_path",
		rootCmd.PersistentFlags().Lookup("ffmpeg-path"),
	)
	viper.BindPFlag(
		"chunk_seconds",
		rootCmd.PersistentFlags().Lookup("chunk-seconds"),
	)
	viper.BindPFlag(
		"heartbeat_seconds",
		rootCmd.PersistentFlags().Lookup("heartbeat-seconds"),
	)
	viper.BindPFlag(
		"max_message_bytes",
		rootCmd.PersistentFlags().Lookup("max-message-bytes"),
	)
	viper.BindPFlag(
		"work_dir",
		rootCmd.PersistentFlags().Lookup("work-dir"),
	)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Printf("Error reading config file: %s\n", err)
		}
	}

	logger = createLogger()
	log.SetDefault(logger)
}

func createLogger() *log.Logger {
	logger := log.New(os.Stdout)
	logger.SetLevel(log.DebugLevel)
	logger.SetReportCaller(true)
	logger.SetCallerFormatter(
		func(file string, line int, funcName string) string {
			path, err := filepath.Rel(".", file)
			if err != nil {
				path = file
			}
			return fmt.Sprintf("%s:%d", path, line)
		},
	)

	styles := log.DefaultStyles()
	styles.Prefix = styles.Prefix.MarginTop(1).
		Bold(false).Transform(func(s string) string {
		return strings.TrimSuffix(s, ":")
	})
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].
		MaxWidth(6).
		MarginRight(1).
		Bold(false)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].
		MaxWidth(6).
		MarginRight(1).
		Bold(false)
	styles.Message = styles.Message.Bold(true).Width(24)
	styles.Key = styles.Key.MarginLeft(1).
		Bold(false).
		Foreground(lipgloss.Color("#ff8800"))

	logger.SetStyles(styles)
	return logger
}

var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "Murmur relays streaming audio to speech recognition",
	Long:  `Murmur is a websocket relay that transcodes browser audio, transcribes it, and optionally translates or replies through a language model.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
