package cmd

import (
	"context"

	"github.com/meditracker/medctl/pkg/medctl/client"
	"github.com/meditracker/medctl/pkg/medctl/config"
	"github.com/meditracker/medctl/pkg/telemetry"
	"github.com/meditracker/medctl/pkg/version"
)

// buildClient resolves the endpoint from flags, environment, the selected
// context and finally the built-in defaults, in that order.
func buildClient(ctx context.Context, rt *runtimeState) (*client.Client, error) {
	if err := rt.EnsureConfigLoaded(); err != nil {
		return nil, err
	}
	if err := rt.InitTracing(ctx); err != nil {
		return nil, err
	}
	ctxCfg, err := rt.ResolveContext()
	if err != nil {
		return nil, err
	}
	timeout, err := rt.Timeout()
	if err != nil {
		return nil, err
	}

	options := []client.Option{
		client.WithServer(rt.resolveServer(ctxCfg)),
		client.WithBasePath(rt.resolveBasePath(ctxCfg)),
		client.WithUserAgent(version.UserAgent()),
		client.WithTimeout(timeout),
		client.WithLogger(rt.Logger()),
	}
	if rt.tracerProvider != nil {
		options = append(options, client.WithTracerProvider(rt.tracerProvider, telemetry.Propagator()))
	}
	if ctxCfg != nil {
		options = append(options, client.WithTLSConfig(ctxCfg.CAFile, ctxCfg.InsecureSkipTLSVerify))
	}
	return client.New(options...)
}

func (rt *runtimeState) resolveServer(ctx *config.Context) string {
	if rt.serverOverride != "" {
		return rt.serverOverride
	}
	if ctx != nil && ctx.Server != "" {
		return ctx.Server
	}
	return config.DefaultServer
}

func (rt *runtimeState) resolveBasePath(ctx *config.Context) string {
	if rt.basePathOverride != "" {
		return rt.basePathOverride
	}
	if ctx != nil && ctx.BasePath != "" {
		return ctx.BasePath
	}
	return config.DefaultBasePath
}
