package stream

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"cpubars/internal/config"
)

// NewSinkFromConfig returns nil when reporting is turned off.
func NewSinkFromConfig(cfg config.Config, tlsCfg *tls.Config, logger *slog.Logger) (Sink, error) {
	switch cfg.ReportMode {
	case config.ReportModeOff:
		return nil, nil
	case config.ReportModeGRPC:
		return NewGRPCClient(cfg.ReportGRPCAddr, tlsCfg, cfg.ReportToken, cfg.ReportGRPCMethod, logger), nil
	case config.ReportModeWebSocket:
		return NewWebSocketClient(cfg.ReportWSURL, cfg.ReportToken, tlsCfg, cfg.ReportTimeout, logger), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownReportMode, cfg.ReportMode)
	}
}
