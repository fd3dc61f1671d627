// Package server provides the GoStego HTTP API and web form.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/xob0t/GoStego/pkg/config"
	"github.com/xob0t/GoStego/pkg/imageio"
	"github.com/xob0t/GoStego/pkg/stego"
)

//go:embed web/*
var webContent embed.FS

type srv struct {
	cfg config.Config
}

// RunServe parses serve flags, loads configuration and blocks serving HTTP.
func RunServe(args []string) error {
	fset := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		cfgPath string
		addr    string
		port    string
	)
	fset.StringVar(&cfgPath, "config", "", "Path to YAML config (optional)")
	fset.StringVar(&addr, "addr", "", "Listen address, overrides config")
	fset.StringVar(&port, "port", "", "Listen port, shorthand for --addr :<port>")
	fset.StringVar(&port, "p", "", "Listen port")
	if err := fset.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	switch {
	case addr != "":
		cfg.Server.Address = addr
	case port != "":
		cfg.Server.Address = ":" + port
	}

	h, err := NewHandler(cfg)
	if err != nil {
		return err
	}

	hs := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	log.Printf("GoStego → http://localhost%s", cfg.Server.Address)
	return hs.ListenAndServe()
}

// NewHandler builds the routed, CORS-wrapped and logged handler.
func NewHandler(cfg config.Config) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &srv{cfg: cfg}

	webFS, err := fs.Sub(webContent, "web")
	if err != nil {
		return nil, fmt.Errorf("embed web: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /encode", s.handleEncode)
	mux.HandleFunc("POST /decode", s.handleDecode)
	mux.HandleFunc("POST /capacity", s.handleCapacity)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /", http.FileServer(http.FS(webFS)))

	return withLogging(withCORS(cfg.Server.AllowedOrigins, mux)), nil
}

// ── Handlers ──

func (s *srv) handleEncode(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	imgBytes, ok := formFile(w, r, "image", "missing image file")
	if !ok {
		return
	}
	secret, ok := formFile(w, r, "secret", "missing secret data")
	if !ok {
		return
	}

	opts := stego.Options{Compress: s.cfg.Codec.Compress}
	if v := r.FormValue("compress"); v != "" {
		c, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid compress flag", http.StatusBadRequest)
			return
		}
		opts.Compress = c
	}

	c, format, err := imageio.Decode(imgBytes, s.cfg.Server.MaxPixels)
	if err != nil {
		writeImageError(w, err)
		return
	}
	if !imageio.Lossless(format) {
		log.Printf("encode: %s input will be re-encoded as PNG", format)
	}

	out, err := stego.EmbedWithOptions(c, secret, r.FormValue("password"), opts)
	if err != nil {
		writeCodecError(w, err)
		return
	}

	data, err := imageio.EncodePNG(out)
	if err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
		log.Printf("encode: %v", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="encoded.png"`)
	w.Write(data)
}

func (s *srv) handleDecode(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	imgBytes, ok := formFile(w, r, "image", "missing image file")
	if !ok {
		return
	}

	c, format, err := imageio.Decode(imgBytes, s.cfg.Server.MaxPixels)
	if err != nil {
		writeImageError(w, err)
		return
	}
	if !imageio.Lossless(format) {
		log.Printf("decode: %s input is lossy, hidden data is unlikely to survive", format)
	}

	secret, err := stego.Extract(c, r.FormValue("password"))
	if err != nil {
		writeCodecError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(secret)
}

type capacityResponse struct {
	Width           int `json:"width"`
	Height          int `json:"height"`
	CapacityBits    int `json:"capacity_bits"`
	MaxPayloadBytes int `json:"max_payload_bytes"`
}

func (s *srv) handleCapacity(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	imgBytes, ok := formFile(w, r, "image", "missing image file")
	if !ok {
		return
	}

	c, _, err := imageio.Decode(imgBytes, s.cfg.Server.MaxPixels)
	if err != nil {
		writeImageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(capacityResponse{
		Width:           c.Width,
		Height:          c.Height,
		CapacityBits:    stego.CapacityBits(c),
		MaxPayloadBytes: stego.MaxPayloadBytes(c),
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

// ── Helpers ──

// parseForm applies the upload limit and parses the multipart body.
func (s *srv) parseForm(w http.ResponseWriter, r *http.Request) bool {
	limit := s.cfg.Server.MaxUploadBytes()
	if r.ContentLength > limit {
		http.Error(w, fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB), http.StatusRequestEntityTooLarge)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB), http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return false
	}
	return true
}

func formFile(w http.ResponseWriter, r *http.Request, field, missing string) ([]byte, bool) {
	file, _, err := r.FormFile(field)
	if err != nil {
		http.Error(w, missing, http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read "+field+": "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func writeImageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, imageio.ErrTooLarge):
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, imageio.ErrUnsupportedFormat):
		http.Error(w, "unsupported image format", http.StatusUnsupportedMediaType)
	default:
		http.Error(w, "invalid image", http.StatusBadRequest)
	}
}

// writeCodecError maps codec errors to a status and a fixed message. Wrong
// password, damaged image and nothing-hidden share one message.
func writeCodecError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stego.ErrPayloadTooLarge):
		http.Error(w, "PayloadTooLarge: secret does not fit in this image", http.StatusRequestEntityTooLarge)
	case errors.Is(err, stego.ErrInsufficientCapacity):
		http.Error(w, "InsufficientCapacity: image too small for the hidden data", http.StatusUnprocessableEntity)
	case errors.Is(err, stego.ErrCorruptFrame):
		http.Error(w, "CorruptFrame: wrong password or no hidden data", http.StatusUnprocessableEntity)
	case errors.Is(err, stego.ErrChecksumMismatch):
		http.Error(w, "ChecksumMismatch: hidden data was modified", http.StatusUnprocessableEntity)
	default:
		log.Printf("codec: %v", err)
		http.Error(w, "EncodingError", http.StatusInternalServerError)
	}
}
