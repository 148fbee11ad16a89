package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"marketoracle/internal/config"
	"marketoracle/internal/httpx"
	"marketoracle/internal/oracle"
	"marketoracle/internal/provider"
)

// quoter is the slice of the oracle the handlers need.
type quoter interface {
	Quote(ctx context.Context, symbol string) (provider.Quote, error)
}

type priceResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	// Fallback marks a degraded answer: every real lookup failed and
	// Price carries the sentinel value. Callers that need a trustworthy
	// quote should use /api/quote instead.
	Fallback bool `json:"fallback"`
}

type quoteResponse struct {
	Quote provider.Quote `json:"quote"`
}

func main() {
	_ = godotenv.Load() // keys in .env are optional, env wins anyway

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil { log.Fatalf("config: %v", err) }
	port := cfg.Server.Port
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	if cfg.AlphaVantage.APIKey == "" && cfg.Polygon.APIKey == "" {
		log.Println("warning: no stock provider key set; equity lookups will return the fallback price")
	}

	httpClient := httpx.New(timeout)
	o := oracle.New(cfg, httpClient)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/price", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
		if symbol == "" {
			http.Error(w, "missing symbol query param", http.StatusBadRequest)
			return
		}
		ctx, cancel := oracle.WithTimeout(r.Context(), timeout)
		defer cancel()
		writePrice(ctx, w, o, symbol)
	})
	mux.HandleFunc("/api/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
		if symbol == "" {
			http.Error(w, "missing symbol query param", http.StatusBadRequest)
			return
		}
		ctx, cancel := oracle.WithTimeout(r.Context(), timeout)
		defer cancel()
		writeQuote(ctx, w, o, symbol)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           withJSONHeaders(recoverPanic(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// writePrice mirrors the best-effort getter: it always answers 200,
// flagging the sentinel when every lookup failed.
func writePrice(ctx context.Context, w http.ResponseWriter, o quoter, symbol string) {
	resp := priceResponse{Symbol: oracle.Normalize(symbol)}
	q, err := o.Quote(ctx, symbol)
	if err != nil {
		log.Printf("price %s: %v (returning fallback)", symbol, err)
		resp.Price = oracle.FallbackPrice
		resp.Fallback = true
	} else {
		resp.Price = q.Price
	}
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

// writeQuote is the diagnostic variant: typed failures map to statuses
// instead of being swallowed.
func writeQuote(ctx context.Context, w http.ResponseWriter, o quoter, symbol string) {
	q, err := o.Quote(ctx, symbol)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrDataNotFound), errors.Is(err, oracle.ErrUnknownCrypto):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, oracle.ErrNoProviderConfigured):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(quoteResponse{Quote: q})
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
