// Package serve runs a long-lived NDJSON server over a pair of streams.
// Each input line is a Request; each output line is a Response.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/matcher"
	"github.com/praetorian-inc/urlspan/pkg/scanner"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server manages the streaming scanner
type Server struct {
	core      *scanner.Core
	extractor *matcher.Extractor
	encoder   *json.Encoder
	decoder   *json.Decoder
	log       *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithExtractor sets the extractor used for "extract" requests.
func WithExtractor(e *matcher.Extractor) Option {
	return func(s *Server) { s.extractor = e }
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a new streaming server
func NewServer(core *scanner.Core, in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		core:      core,
		extractor: matcher.DefaultExtractor(),
		encoder:   json.NewEncoder(out),
		decoder:   json.NewDecoder(bufio.NewReader(in)),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the server main loop. It returns nil when the input ends or a
// "close" request arrives, and the context error on cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// A request may still be queued when the reader hits EOF.
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.log.Warn("decode failed", zap.Error(err))
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(req Request) bool {
	s.log.Debug("request", zap.String("type", req.Type))

	switch req.Type {
	case "extract":
		s.handleExtract(req.Payload)
	case "scan":
		s.handleScan(req.Payload)
	case "scan_batch":
		s.handleScanBatch(req.Payload)
	case "findings":
		s.handleFindings()
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	var schemes []string
	for _, lit := range s.extractor.Protocol().Literals() {
		schemes = append(schemes, strings.TrimSuffix(lit, "://"))
	}
	s.send("ready", ReadyData{Version: Version, Schemes: schemes})
}

func (s *Server) handleExtract(payload json.RawMessage) {
	var p ExtractPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("extract", err.Error())
		return
	}

	results := make([]ExtractResult, 0, len(p.Inputs))
	for _, input := range p.Inputs {
		res := ExtractResult{Input: input}
		if ex, ok := s.extractor.ExtractResult(input); ok {
			res.Extraction = ex
		}
		results = append(results, res)
	}
	s.send("extract", results)
}

func (s *Server) handleScan(payload json.RawMessage) {
	var p ScanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan", err.Error())
		return
	}

	result, err := s.core.Scan(p.Content, p.Source)
	if err != nil {
		s.sendError("scan", err.Error())
		return
	}
	s.send("scan", result)
}

func (s *Server) handleScanBatch(payload json.RawMessage) {
	var p ScanBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan_batch", err.Error())
		return
	}

	result, err := s.core.ScanBatch(p.Items)
	if err != nil {
		s.sendError("scan_batch", err.Error())
		return
	}
	s.send("scan_batch", result)
}

func (s *Server) handleFindings() {
	findings, err := s.core.Findings()
	if err != nil {
		s.sendError("findings", err.Error())
		return
	}

	data := make([]FindingData, 0, len(findings))
	for _, f := range findings {
		data = append(data, FindingData{
			ID:          f.ID,
			URL:         f.URL,
			Host:        f.Host,
			Occurrences: len(f.Matches),
		})
	}
	s.send("findings", data)
}

func (s *Server) send(respType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(respType, err.Error())
		return
	}
	if err := s.encoder.Encode(Response{Success: true, Type: respType, Data: data}); err != nil {
		s.log.Error("write response", zap.String("type", respType), zap.Error(err))
	}
}

func (s *Server) sendError(reqType, msg string) {
	if err := s.encoder.Encode(Response{Success: false, Type: reqType, Error: msg}); err != nil {
		s.log.Error("write error response", zap.String("type", reqType), zap.Error(err))
	}
}
