package http

import (
	"fmt"
	"net/http"
	"sync"

	"tripplanner/internal/generated/servers"
	"tripplanner/internal/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

const swaggerInstance = "tripplanner"

var registerDocOnce sync.Once

// openAPIDoc serves the embedded OpenAPI document to the swagger UI.
type openAPIDoc struct {
	json string
}

func (d openAPIDoc) ReadDoc() string { return d.json }

// NewRouter wires the API, /health, /metrics and /swagger onto a new echo
// instance. limiter may be nil.
func NewRouter(server *Server, m *metrics.Metrics, limiter *RateLimiter) (*echo.Echo, error) {
	swagger, err := servers.GetSwagger()
	if err != nil {
		return nil, err
	}
	if err = registerSwaggerDoc(swagger); err != nil {
		return nil, err
	}
	validator, err := OpenAPIValidator(swagger)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(m.Middleware())
	if limiter != nil {
		e.Use(limiter.Middleware())
	}
	e.Use(validator)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(swaggerInstance)))

	servers.RegisterHandlers(e, server)

	return e, nil
}

func registerSwaggerDoc(swagger *openapi3.T) error {
	doc, err := swagger.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode openapi document: %w", err)
	}

	registerDocOnce.Do(func() {
		swag.Register(swaggerInstance, openAPIDoc{json: string(doc)})
	})
	return nil
}
