package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/odhiambo/treasury"
)

var webAddr string
var webRPS int

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the treasury over an HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		logger, err := newWebLogger()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer logger.Sync()

		eng, err := loadEngine()
		if err != nil {
			logger.Fatal("unable to load state", zap.Error(err))
		}
		eng.rates.Warnf = func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		}
		eng.executor.Warnf = eng.rates.Warnf

		srv := &webServer{eng: eng, logger: logger}

		r := chi.NewRouter()
		r.Use(chimiddleware.Recoverer)
		r.Use(limitMiddleware(rate.NewLimiter(rate.Limit(webRPS), webRPS)))
		r.Use(brotliMiddleware)
		r.Get("/api/accounts", srv.handleAccounts)
		r.Get("/api/portfolio", srv.handlePortfolio)
		r.Get("/api/transactions", srv.handleTransactions)
		r.Post("/api/transfer", srv.handleTransfer)
		r.Post("/api/release", srv.handleRelease)

		server := &http.Server{Addr: webAddr, Handler: r}
		go func() {
			logger.Info("listening", zap.String("addr", webAddr))
			if serr := server.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(serr))
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := server.Shutdown(ctx); serr != nil {
			logger.Error("shutdown failed", zap.Error(serr))
		}
		eng.save()
	},
}

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().StringVar(&webAddr, "addr", ":8056", "Listen address.")
	webCmd.Flags().IntVar(&webRPS, "rate-limit", 25, "Maximum requests per second.")
}

func newWebLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func limitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type brotliResponseWriter struct {
	http.ResponseWriter
	bw io.Writer
}

func (w *brotliResponseWriter) Write(b []byte) (int, error) {
	return w.bw.Write(b)
}

func brotliMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			next.ServeHTTP(w, r)
			return
		}
		bw := brotli.NewWriter(w)
		defer bw.Close()
		w.Header().Set("Content-Encoding", "br")
		next.ServeHTTP(&brotliResponseWriter{ResponseWriter: w, bw: bw}, r)
	})
}

type webServer struct {
	eng    *engine
	logger *zap.Logger

	// guards snapshot writes triggered by mutating handlers
	saveMu sync.Mutex
}

func (s *webServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("unable to encode response", zap.Error(err))
	}
}

func (s *webServer) save() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.eng.save()
}

func (s *webServer) handleAccounts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.eng.store.Accounts())
}

func (s *webServer) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.eng.store.TotalsByCurrency())
}

func (s *webServer) handleTransactions(w http.ResponseWriter, r *http.Request) {
	var filter treasury.Filter
	q := r.URL.Query()
	filter.Account = q.Get("account")
	filter.Currency = treasury.Currency(q.Get("currency"))
	if begin := q.Get("begin"); begin != "" {
		t, err := dateparse.ParseAny(begin)
		if err != nil {
			http.Error(w, "unable to parse begin date", http.StatusBadRequest)
			return
		}
		filter.Begin = t
	}
	if end := q.Get("end"); end != "" {
		t, err := dateparse.ParseAny(end)
		if err != nil {
			http.Error(w, "unable to parse end date", http.StatusBadRequest)
			return
		}
		filter.End = t.Add(24*time.Hour - time.Second)
	}

	records := make([]treasury.TransactionRecord, 0)
	for rec := range s.eng.ledger.Query(filter) {
		records = append(records, rec)
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *webServer) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req treasury.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "unable to decode request", http.StatusBadRequest)
		return
	}

	rec, err := s.eng.executor.Execute(req)
	if err != nil {
		var reject *treasury.RejectError
		if errors.As(err, &reject) {
			s.writeJSON(w, http.StatusUnprocessableEntity, map[string][]string{"reasons": reject.Reasons})
			return
		}
		s.logger.Error("transfer failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.save()

	s.logger.Info("transfer",
		zap.String("from", rec.FromAccount),
		zap.String("to", rec.ToAccount),
		zap.String("amount", rec.Amount.String()),
		zap.String("status", string(rec.Status)))
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *webServer) handleRelease(w http.ResponseWriter, _ *http.Request) {
	released := s.eng.executor.ReleaseDue(time.Now())
	s.save()
	s.writeJSON(w, http.StatusOK, released)
}
