package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// defaultLimit applies when a request has no limit, before the max_limit cap.
const defaultLimit = 10

// Error codes.
const (
	codeBadRequest = 400
	codeNotFound   = 404
	codeInternal   = 500
)

// Server handles the IPC for word completions
type Server struct {
	completer *suggest.Completer
	reader    *bufio.Reader
	writer    *bufio.Writer
	decoder   *msgpack.Decoder
	encoder   *msgpack.Encoder

	mu     sync.RWMutex
	config config.ServerConfig

	requests atomic.Int64
}

// NewServer creates a completion server reading requests from r and writing responses to w.
func NewServer(completer *suggest.Completer, cfg config.ServerConfig, r io.Reader, w io.Writer) *Server {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	return &Server{
		completer: completer,
		reader:    reader,
		writer:    writer,
		decoder:   msgpack.NewDecoder(reader),
		encoder:   msgpack.NewEncoder(writer),
		config:    cfg,
	}
}

// Config returns the server settings currently in effect.
func (s *Server) Config() config.ServerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// UpdateConfig swaps the server settings. Safe to call while Start runs.
func (s *Server) UpdateConfig(cfg config.ServerConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	log.Debugf("Server config updated: %+v", cfg)
}

// Requests returns the number of requests handled so far. Safe to call
// while Start runs.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Start serves requests until the input ends or ctx is done.
// A request that cannot be decoded ends the stream, since msgpack has no
// framing to resynchronize on.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("Input closed after %d requests", s.Requests())
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", codeBadRequest)
			return fmt.Errorf("failed to decode request: %w", err)
		}

		s.requests.Add(1)
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Action {
	case "", ActionComplete:
		s.handleComplete(req)
	case ActionSuggest:
		s.handleSuggest(req)
	case ActionConfirm:
		s.handleConfirm(req)
	case ActionInsert:
		s.handleInsert(req)
	case ActionStats:
		s.sendResponse(StatsResponse{ID: req.ID, Stats: s.completer.Stats()})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), codeBadRequest)
	}
}

// sendResponse encodes response and flushes it to the client.
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(CompletionError{ID: id, Error: message, Code: code})
}

// checkPrefix validates a prefix against the current limits and returns a
// message describing the problem, or "" when it may be looked up.
func checkPrefix(prefix string, cfg config.ServerConfig) string {
	switch {
	case prefix == "":
		return "Missing prefix"
	case len(prefix) < cfg.MinPrefix:
		return fmt.Sprintf("Prefix must be at least %d characters", cfg.MinPrefix)
	case len(prefix) > cfg.MaxPrefix:
		return fmt.Sprintf("Prefix exceeds maximum length of %d characters", cfg.MaxPrefix)
	}
	return ""
}

// handleComplete lists ranked completions. Prefixes rejected by the input
// filter get an empty list rather than an error.
func (s *Server) handleComplete(req Request) {
	cfg := s.Config()
	if msg := checkPrefix(req.Prefix, cfg); msg != "" {
		log.Debugf("Rejected prefix %q: %s", req.Prefix, msg)
		s.sendError(req.ID, msg, codeBadRequest)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, cfg.MaxLimit)

	start := time.Now()
	var suggestions []suggest.Suggestion
	if !cfg.EnableFilter || utils.IsValidInput(req.Prefix) {
		suggestions = s.completer.Complete(req.Prefix, limit)
	}

	ranks := utils.CreateRankList(len(suggestions))
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CompletionSuggestion{Word: sg.Word, Rank: ranks[i], Priority: sg.Priority}
	}

	s.sendResponse(CompletionResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleSuggest(req Request) {
	if msg := checkPrefix(req.Prefix, s.Config()); msg != "" {
		s.sendError(req.ID, msg, codeBadRequest)
		return
	}
	sg, ok := s.completer.Suggest(req.Prefix)
	s.sendResponse(SuggestResponse{ID: req.ID, Word: sg.Word, Priority: sg.Priority, OK: ok})
}

// handleConfirm records a typed word. Unknown words are learned first when
// learn_unknown is set.
func (s *Server) handleConfirm(req Request) {
	if suggest.Filter(req.Word) == "" {
		s.sendError(req.ID, "Missing or unusable word", codeBadRequest)
		return
	}

	sg, err := s.completer.Confirm(req.Word)
	if errors.Is(err, suggest.ErrUnknownWord) && s.Config().LearnUnknown {
		log.Debugf("Learning unknown word %q", req.Word)
		s.completer.AddWord(req.Word)
		sg, err = s.completer.Confirm(req.Word)
	}
	switch {
	case errors.Is(err, suggest.ErrUnknownWord):
		s.sendError(req.ID, err.Error(), codeNotFound)
	case err != nil:
		s.sendError(req.ID, err.Error(), codeInternal)
	default:
		s.sendResponse(ConfirmResponse{ID: req.ID, Status: "ok", Word: sg.Word, Priority: sg.Priority})
	}
}

func (s *Server) handleInsert(req Request) {
	if suggest.Filter(req.Word) == "" {
		s.sendError(req.ID, "Missing or unusable word", codeBadRequest)
		return
	}
	index := s.completer.Index()
	term := s.completer.AddWord(req.Word)
	word, _ := index.Word(term)
	s.sendResponse(ConfirmResponse{ID: req.ID, Status: "inserted", Word: word, Priority: index.Priority(term)})
}
