package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/edmo-voice/audio"
	cfg "github.com/maastricht-university/edmo-voice/config"
	"github.com/maastricht-university/edmo-voice/orchestrator"
)

const maxUpload = 64 << 20

// analyzer is the part of the pipeline the HTTP handlers need.
type analyzer interface {
	AnalyzeWaveform(ctx context.Context, w audio.Waveform) (orchestrator.Result, error)
	Degraded() bool
}

// resultSink is satisfied by *store.SQLiteSink.
type resultSink interface {
	Save(ctx context.Context, userID string, r orchestrator.Result) (string, error)
}

type server struct {
	pipeline analyzer
	sink     resultSink
	log      logrus.FieldLogger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mode := orchestrator.MethodFull
	if s.pipeline.Degraded() {
		mode = orchestrator.MethodHeuristic
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "analysis_method": mode})
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing audio file")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".wav" {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload a WAV file.")
		return
	}

	wave, err := audio.Decode(file)
	if err != nil {
		s.log.WithError(err).WithField("file", header.Filename).Warn("upload rejected")
		writeError(w, http.StatusBadRequest, "Analysis failed - invalid audio file")
		return
	}
	res, err := s.pipeline.AnalyzeWaveform(r.Context(), wave)
	if err != nil {
		s.log.WithError(err).Error("analysis failed")
		writeError(w, http.StatusInternalServerError, "Error processing audio")
		return
	}

	if userID := r.FormValue("user_id"); userID != "" && s.sink != nil {
		key, err := s.sink.Save(r.Context(), userID, res)
		if err != nil {
			s.log.WithError(err).WithField("user_id", userID).Error("saving result failed")
		} else {
			s.log.WithFields(logrus.Fields{"user_id": userID, "key": key}).Info("result saved")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func newServeCmd(o *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, closeDeps := newPipeline(ctx, o.conf)
			defer closeDeps()

			srv := &server{pipeline: p, log: logrus.StandardLogger()}
			sink, err := openSink(o.conf)
			if err != nil {
				logrus.WithError(err).Warn("result sink unavailable, user results will not be saved")
			} else if sink != nil {
				defer sink.Close()
				srv.sink = sink
			}

			cfg.Watch(o.v, func(c *cfg.Root) {
				if err := setLevel(c.Pipeline.LogLvl); err != nil {
					logrus.WithError(err).Warn("ignoring reloaded log level")
				}
			})

			hs := &http.Server{Addr: addr, Handler: srv.routes(), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				hs.Shutdown(shutdown)
			}()

			logrus.WithFields(logrus.Fields{"addr": addr, "degraded": p.Degraded()}).Info("listening")
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	return cmd
}
