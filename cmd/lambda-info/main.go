package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/eugenenazirov/lambda-settings/internal/config"
	"github.com/eugenenazirov/lambda-settings/internal/logging"
	"github.com/eugenenazirov/lambda-settings/internal/settings"
	"github.com/eugenenazirov/lambda-settings/internal/sources"
)

type InfoResponse struct {
	Info map[string]any `json:"info"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// infoHandler serves the settings resolved once at cold start. A resolution
// failure is kept and answered on every invocation.
type infoHandler struct {
	settings *settings.Settings
	err      error
	logger   *zap.Logger
}

func newInfoHandler(s *settings.Settings, err error, logger *zap.Logger) *infoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &infoHandler{settings: s, err: err, logger: logger}
}

func (h *infoHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if h.err != nil {
		h.logger.Error("settings unavailable",
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Error(h.err),
		)
		return respond(http.StatusInternalServerError, ErrorResponse{Error: "invalid configuration"}), nil
	}

	if h.settings.DebugMode() {
		h.logger.Debug("settings dump",
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Object("settings", h.settings),
		)
	}
	return respond(http.StatusOK, InfoResponse{Info: h.settings.Dump()}), nil
}

func respond(status int, payload any) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(payload)

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type":                "application/json",
			"access-control-allow-origin": "*",
		},
		Body: string(body),
	}
}

func main() {
	env := sources.Environ()
	s, err := config.LoadSettings(context.Background(), &config.SettingsOptions{
		TFVars:  env["TFVARS_PATH"],
		WorkDir: env["LAMBDA_TASK_ROOT"],
	}, env)

	debug := err == nil && s.DebugMode()
	logger, logErr := logging.New(debug)
	if logErr != nil {
		logger = zap.NewNop()
	}
	defer func() {
		_ = logger.Sync()
	}()

	lambda.Start(newInfoHandler(s, err, logger).Handle)
}
