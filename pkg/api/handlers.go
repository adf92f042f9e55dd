package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sort"
	"time"

	"github.com/LeDuy-Vu/serialize-this/pkg/codec"
	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/LeDuy-Vu/serialize-this/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// Server holds the API server state
type Server struct {
	config  *config.Config
	archive storage.Storage
	metrics *Metrics
	log     *zap.Logger
}

// NewServer creates a new API server. archive and metrics may be nil.
func NewServer(cfg *config.Config, archive storage.Storage, metrics *Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		config:  cfg,
		archive: archive,
		metrics: metrics,
		log:     log,
	}
}

func (s *Server) recordCodec(operation string, err error, packetBytes int, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordCodecOperation(operation, err == nil, packetBytes, time.Since(start))
	}
}

func (s *Server) recordArchive(operation string, err error) {
	if s.metrics != nil {
		s.metrics.RecordArchiveOperation(operation, err == nil)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Error("archive operation failed", zap.String("operation", operation), zap.Error(err))
	}
}

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListFormats lists the catalogue
func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	formats := make([]FormatInfo, 0, len(s.config.Formats))
	for _, def := range s.config.Formats {
		formats = append(formats, formatInfo(def))
	}
	sendSuccess(w, formats)
}

// handleGetFormat returns one catalogue entry
func (s *Server) handleGetFormat(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	for _, def := range s.config.Formats {
		if def.Name == name {
			sendSuccess(w, formatInfo(def))
			return
		}
	}
	sendError(w, fmt.Sprintf("Format %q not found", name), http.StatusNotFound)
}

// handleEncode packs the request values into a packet, archiving it when
// asked to
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	var req EncodeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		s.recordCodec("encode", err, 0, start)
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	packet, err := s.encode(name, req.Values)
	s.recordCodec("encode", err, len(packet), start)
	if err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}

	resp := EncodeResponse{Packet: hex.EncodeToString(packet)}
	if req.Archive {
		if s.archive == nil {
			sendError(w, "Packet archive is not configured", http.StatusServiceUnavailable)
			return
		}
		id, err := s.archive.Put(&storage.Packet{Format: name, Data: packet})
		s.recordArchive("put", err)
		if err != nil {
			sendError(w, "Failed to archive packet", http.StatusInternalServerError)
			return
		}
		resp.ID = id.String()
	}

	sendSuccess(w, resp)
}

func (s *Server) encode(name string, values map[string]interface{}) ([]byte, error) {
	format, err := s.config.Format(name)
	if err != nil {
		return nil, err
	}
	ser, err := codec.New(format, codec.WithLogger(s.log))
	if err != nil {
		return nil, err
	}

	// Sorted so that the first failing field is the same on every call
	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		v, err := fieldValue(n, values[n])
		if err != nil {
			return nil, err
		}
		if err := ser.SetField(n, v); err != nil {
			return nil, err
		}
	}
	return ser.ToBytes()
}

// fieldValue converts a decoded JSON value to something SetField accepts
func fieldValue(name string, raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case json.Number:
		n, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, invalidValue(name, "%s is not an integer", v)
		}
		return n, nil
	case string:
		return codec.Bits(v), nil
	case map[string]interface{}:
		h, ok := v["hex"].(string)
		if !ok || len(v) != 1 {
			return nil, invalidValue(name, `object values must be {"hex": "..."}`)
		}
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, invalidValue(name, "bad hex: %v", err)
		}
		return b, nil
	default:
		return nil, invalidValue(name, "unsupported JSON value %v", raw)
	}
}

func invalidValue(field, format string, args ...interface{}) error {
	return &codec.Error{
		Op:     "set",
		Kind:   codec.KindInvalidArgument,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	}
}

// handleDecode unpacks a hex packet with the named format
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.recordCodec("decode", err, 0, start)
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	packet, err := hex.DecodeString(req.Packet)
	if err != nil {
		s.recordCodec("decode", err, 0, start)
		sendError(w, "Packet must be hex encoded", http.StatusBadRequest)
		return
	}

	fields, err := s.decode(name, packet, req.Index)
	s.recordCodec("decode", err, len(packet), start)
	if err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}

	sendSuccess(w, fields)
}

func (s *Server) decode(name string, packet []byte, index int) ([]FieldValue, error) {
	format, err := s.config.Format(name)
	if err != nil {
		return nil, err
	}
	ser, err := codec.New(format, codec.WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	if err := ser.FromBytes(packet, index); err != nil {
		return nil, err
	}
	return fieldValues(ser.Data()), nil
}

// handleListPackets lists archived packet IDs
func (s *Server) handleListPackets(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		sendError(w, "Packet archive is not configured", http.StatusServiceUnavailable)
		return
	}

	ids, err := s.archive.List()
	s.recordArchive("list", err)
	if err != nil {
		sendError(w, "Failed to list packets", http.StatusInternalServerError)
		return
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	sendSuccess(w, out)
}

// handleGetPacket returns an archived packet, decoded with its format
func (s *Server) handleGetPacket(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		sendError(w, "Packet archive is not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid packet ID", http.StatusBadRequest)
		return
	}

	p, err := s.archive.Get(id)
	s.recordArchive("get", err)
	if err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}

	info := PacketInfo{
		ID:        p.ID.String(),
		Format:    p.Format,
		Packet:    hex.EncodeToString(p.Data),
		CreatedAt: p.CreatedAt,
	}

	start := time.Now()
	fields, err := s.decode(p.Format, p.Data, 0)
	s.recordCodec("decode", err, len(p.Data), start)
	switch {
	case errors.Is(err, config.ErrFormatNotFound):
		// format was removed from the catalogue; return the raw packet
	case err != nil:
		sendError(w, err.Error(), statusForError(err))
		return
	default:
		info.Fields = fields
	}

	sendSuccess(w, info)
}

// handleDeletePacket removes an archived packet
func (s *Server) handleDeletePacket(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		sendError(w, "Packet archive is not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid packet ID", http.StatusBadRequest)
		return
	}

	err = s.archive.Delete(id)
	s.recordArchive("delete", err)
	if err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}

	sendSuccess(w, map[string]string{"deleted": id.String()})
}

func formatInfo(def config.FormatDef) FormatInfo {
	f := def.Codec()
	variable := false
	for _, fld := range f {
		if fld.IsVariable() {
			variable = true
		}
	}
	return FormatInfo{
		Name:        def.Name,
		Description: def.Description,
		Bits:        f.Bits(),
		Variable:    variable,
		Fields:      def.Fields,
	}
}

func fieldValues(values []codec.Value) []FieldValue {
	out := make([]FieldValue, len(values))
	for i, v := range values {
		out[i] = FieldValue{Name: v.Name, Bits: v.Bits, Uint: v.Uint().String()}
	}
	return out
}
