package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/coder/websocket"

	"github.com/JonMunkholm/csvedit/internal/bridge"
	"github.com/JonMunkholm/csvedit/internal/core"
	"github.com/JonMunkholm/csvedit/internal/csv"
	"github.com/JonMunkholm/csvedit/internal/logging"
)

// sessionResponse is the body of GET /api/session.
type sessionResponse struct {
	core.SessionState
	HostConnected bool `json:"hostConnected"`
}

type optionsRequest struct {
	Read   *core.ReadOptions  `json:"read"`
	Write  *core.WriteOptions `json:"write"`
	Reload bool               `json:"reload"`
}

type optionsResponse struct {
	Read  core.ReadOptions  `json:"read"`
	Write core.WriteOptions `json:"write"`
}

type tableRequest struct {
	Rows [][]*string `json:"rows"`
}

type headerRequest struct {
	HeaderRow []*string `json:"headerRow"`
}

type commentsRequest struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type copyRequest struct {
	Text string `json:"text"`
}

type notifyRequest struct {
	Type    bridge.MsgBoxType `json:"type"`
	Content string            `json:"content"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Warn("json encode error", "error", err)
	}
}

// decodeJSON reads a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Editor.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return bodyError(err)
	}
	return nil
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, sessionResponse{
		SessionState:  s.session.Snapshot(),
		HostConnected: s.bridge.Connected(),
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.settings())
}

func (s *Server) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, optionsResponse{
		Read:  s.session.ReadOptions(),
		Write: s.session.WriteOptions(),
	})
}

// handlePutOptions replaces read and/or write options. With reload set the
// document is parsed again with the new read options.
func (s *Server) handlePutOptions(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if req.Read != nil {
		s.session.SetReadOptions(*req.Read)
	}
	if req.Write != nil {
		s.session.SetWriteOptions(*req.Write)
	}
	if req.Reload {
		if err := s.session.Reload(r.Context()); err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
	}

	s.handleGetOptions(w, r)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.session.Table())
}

func (s *Server) handlePutTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.session.SetData(req.Rows)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutHeader(w http.ResponseWriter, r *http.Request) {
	var req headerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.session.SetHeaderRow(req.HeaderRow)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutComments(w http.ResponseWriter, r *http.Request) {
	var req commentsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.session.SetComments(req.Before, req.After)
	w.WriteHeader(http.StatusNoContent)
}

// handlePostContent loads the raw request body as the document text.
func (s *Server) handlePostContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Editor.MaxBodySize)
	content, err := csv.Decode(r.Body)
	if err != nil {
		err = bodyError(err)
		respondError(w, r, err, statusFor(err))
		return
	}

	if err := s.session.SetInitialContent(r.Context(), content); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.handleSession(w, r)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reload(r.Context()); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.handleSession(w, r)
}

func (s *Server) handleGetCSV(w http.ResponseWriter, r *http.Request) {
	content, err := s.session.CSV()
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Write([]byte(content))
}

// handleApply sends the table to the host. ?save=true also saves the file.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	save, _ := strconv.ParseBool(r.URL.Query().Get("save"))
	if err := s.session.ApplyContent(r.Context(), save); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if err := s.session.CopyToClipboard(r.Context(), req.Text); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	switch req.Type {
	case bridge.MsgBoxInfo, bridge.MsgBoxWarn, bridge.MsgBoxError:
	default:
		err := bodyError(fmt.Errorf("unknown message box type %q", req.Type))
		respondError(w, r, err, statusFor(err))
		return
	}
	if err := s.session.Notify(r.Context(), req.Type, req.Content); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleHost upgrades to a websocket and serves the host protocol on it
// until either side closes.
func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Security.AllowedOrigins,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("host upgrade failed", "error", err)
		return
	}

	log := logging.WithFields(r.Context(), "component", "host", "peer", r.RemoteAddr)
	ctx := logging.NewContext(r.Context(), log)
	if err := bridge.Serve(ctx, ws, s.bridge, s.session, bridge.ServeOptions{}); err != nil {
		log.Warn("host connection ended", "error", err)
		return
	}
	log.Info("host connection closed")
}
