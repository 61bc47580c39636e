package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/presenter/http/render"
)

type ctxKey int

const (
	bridgeCfgCtxKey ctxKey = iota
	depositHashCtxKey
)

func GetBridgeConfigMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bridgeID := chi.URLParam(r, "bridgeID")

			bridgeCfg, ok := cfg.Bridges[bridgeID]
			if !ok || bridgeCfg == nil {
				render.JSON(w, r, http.StatusNotFound, fmt.Sprintf("bridge with id %s not found", bridgeID))
				return
			}

			ctx := context.WithValue(r.Context(), bridgeCfgCtxKey, bridgeCfg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func BridgeConfig(ctx context.Context) *config.BridgeConfig {
	if cfg, ok := ctx.Value(bridgeCfgCtxKey).(*config.BridgeConfig); ok {
		return cfg
	}
	return new(config.BridgeConfig)
}

func GetDepositHashMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := common.HexToHash(chi.URLParam(r, "depositHash"))

		ctx := context.WithValue(r.Context(), depositHashCtxKey, hash)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func DepositHash(ctx context.Context) common.Hash {
	if hash, ok := ctx.Value(depositHashCtxKey).(common.Hash); ok {
		return hash
	}
	return common.Hash{}
}
