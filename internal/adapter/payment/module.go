package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/metrics"
)

// Module exposes the configured payment gateway to fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newGateway(p gatewayParams) (Gateway, error) {
	cfg := Config{
		URL: p.Config.Gateway.URL,
		Credentials: Credentials{
			MerchantID: p.Config.Gateway.MerchantID,
			PublicKey:  p.Config.Gateway.PublicKey,
			PrivateKey: p.Config.Gateway.PrivateKey,
		},
		Timeout: p.Config.Gateway.Timeout,
	}

	var gw Gateway
	switch p.Config.Gateway.Mode {
	case config.GatewayModeHTTP:
		client, err := NewHTTPGateway(cfg, p.Logger)
		if err != nil {
			return nil, err
		}
		gw = client
	default:
		p.Logger.Warn("using sandbox payment gateway")
		gw = NewSandbox(cfg.Credentials)
	}
	return NewInstrumented(gw, p.Metrics), nil
}
