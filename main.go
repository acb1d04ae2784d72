package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/veltalldev/photo-gallery/api"
	"github.com/veltalldev/photo-gallery/config"
	"github.com/veltalldev/photo-gallery/middleware"
	"github.com/veltalldev/photo-gallery/storage"
	"github.com/veltalldev/photo-gallery/util"
)

func main() {
	// .env is optional, real config comes from .config.yaml + env overrides
	_ = godotenv.Load()

	conf := config.GetConfig(nil)

	// Set logrus log level from config
	switch conf.LogLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
	fmtter := new(logrus.TextFormatter)
	fmtter.TimestampFormat = "2006-01-02 15:04:05"
	fmtter.FullTimestamp = true
	logrus.SetFormatter(fmtter)

	if err := storage.InitPhotoStore(); err != nil {
		util.HandleFatalError(err)
	}
	util.LogInfo("Photo store initialized", logrus.Fields{
		"directory": conf.Photos.Directory,
	})

	// A malformed whitelist entry aborts startup rather than running with a
	// partial list
	whitelist, err := middleware.NewWhitelist(conf.Whitelist)
	if err != nil {
		util.HandleFatalError(err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: false,
		ErrorHandler:          api.ErrorHandler,
	})

	// Router
	api.RegisterAllRoutes(app, whitelist)

	serverAddress := fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	util.LogInfo("Server started", logrus.Fields{
		"address": serverAddress,
	})

	if err := app.Listen(serverAddress); err != nil {
		util.HandleFatalError(err)
	}
}
