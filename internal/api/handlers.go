package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/donation"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/uischema"
)

const maxBodyBytes = 16 << 10

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Tiers(r.Context()))
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Checkout(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCheckoutUI(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Checkout(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uischema.Build(c, s.svc.Payee()))
}

func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	opts := s.svc.QROptions()
	q := r.URL.Query()
	if v := q.Get("width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "width must be an integer")
			return
		}
		opts.Width = width
	}
	if v := q.Get("level"); v != "" {
		level, err := qr.ParseLevel(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Level = level
	}
	if err := opts.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	png, err := s.svc.QRCode(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type encodeResponse struct {
	Payload string `json:"payload"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req pix.PaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	payload, err := s.svc.Encode(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logger.Info("payload encoded", "user", UserFromContext(r.Context()), "request_id", RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, encodeResponse{Payload: payload})
}

type verifyRequest struct {
	Payload string `json:"payload"`
}

type verifyResponse struct {
	Valid   bool         `json:"valid"`
	Decoded *pix.Decoded `json:"decoded,omitempty"`
	Error   string       `json:"error,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := s.svc.Verify(r.Context(), req.Payload)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, pix.ErrChecksumMismatch) {
			reason = "checksum_mismatch"
		}
		writeJSON(w, http.StatusBadRequest, verifyResponse{Error: err.Error(), Reason: reason})
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, Decoded: d})
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// writeServiceError maps donation and encoder errors to status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, donation.ErrTierNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, pix.ErrMissingKey), errors.Is(err, pix.ErrInvalidAmount), errors.Is(err, pix.ErrFieldTooLong):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Reason: donation.Reason(err)})
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
