package app

import (
	"fmt"
	"log"
	"strings"

	"arbetsdata/internal/delivery/http/middleware"
	"arbetsdata/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

// New assembles the fiber app: global middleware, health, and v1 routes.
func New(c *Container, logger *log.Logger) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	f.Use(middleware.NewErrorMiddleware(logger).Middleware())
	f.Use(middleware.NewAccessLogMiddleware(logger).Middleware())

	routes.NewRegistry(c.Data, c.Cache).Register(f)

	return &App{Fiber: f}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
