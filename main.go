package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shyamgroup/backoffice/config"
	"github.com/shyamgroup/backoffice/database"
	"github.com/shyamgroup/backoffice/devapi"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web"

	"github.com/spf13/cobra"
)

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	server := web.NewServer()
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func runDevAPI() {
	initLogger()
	defer logger.CloseLogger()

	db, err := database.Open(config.GetDevAPIDBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	srv, err := devapi.New(db, config.GetDevAPISecret())
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()
	if err := srv.Run(ctx, config.GetDevAPIListen()); err != nil {
		logger.Error("devapi:", err)
	}
}

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		log.Println("load .env:", err)
	}

	var rootCmd = &cobra.Command{
		Use:   config.GetName(),
		Short: "Back-office console for the corporate content site",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web console",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var devapiCmd = &cobra.Command{
		Use:   "devapi",
		Short: "Run a local sqlite-backed content backend for development",
		Run: func(cmd *cobra.Command, args []string) {
			runDevAPI()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetName(), config.GetVersion())
		},
	}

	rootCmd.AddCommand(runCmd, devapiCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
