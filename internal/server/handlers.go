package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"vidshrink/internal/encoder"
	"vidshrink/internal/model"
	"vidshrink/internal/pipeline"
	"vidshrink/internal/util/bitrate"
	"vidshrink/internal/util/deps"
)

// multipart parts above this size spill to disk.
const formMemory = 32 << 20

// Compress accepts a multipart upload (field "file") and streams back the
// compressed video. Report values travel in X-* headers.
func (s *Server) Compress(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+formMemory)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, errorBody{Error: "upload exceeds the size limit"})
			return
		}
		writeJSONError(w, http.StatusBadRequest, errorBody{Error: "expected multipart/form-data with a file field"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errorBody{Error: "missing file", Field: "file"})
		return
	}
	defer file.Close()

	settings, err := encoder.ParseSettings(r.FormValue)
	if err != nil {
		s.writeError(w, err)
		return
	}

	up := model.Upload{Name: header.Filename, Size: header.Size, Body: file}
	_, err = s.svc.Compress(r.Context(), up, settings, func(rep model.Report, out *os.File) error {
		h := w.Header()
		h.Set("Content-Type", "video/mp4")
		h.Set("Content-Length", strconv.FormatInt(rep.CompressedBytes, 10))
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rep.DownloadName}))
		h.Set("X-Job-ID", rep.JobID)
		h.Set("X-Original-Size", strconv.FormatInt(rep.OriginalBytes, 10))
		h.Set("X-Compressed-Size", strconv.FormatInt(rep.CompressedBytes, 10))
		h.Set("X-Size-Reduction", strconv.FormatFloat(rep.ReductionPercent, 'f', 1, 64))
		h.Set("X-Simulated", strconv.FormatBool(rep.Simulated))
		w.WriteHeader(http.StatusOK)
		_, err := io.Copy(w, out)
		return err
	})
	if err != nil {
		var ioe *pipeline.IOError
		if errors.As(err, &ioe) && ioe.Op == "deliver" {
			// Headers are already sent.
			s.log.Warn("download interrupted", "error", err)
			return
		}
		s.writeError(w, err)
	}
}

type planResponse struct {
	Preset       string   `json:"preset"`
	CRF          int      `json:"crf"`
	AudioBitrate string   `json:"audio_bitrate"`
	MaxWidth     int      `json:"max_width"`
	VideoCodec   string   `json:"video_codec"`
	MaxFramerate int      `json:"max_framerate"`
	DownloadName string   `json:"download_name"`
	Argv         []string `json:"argv"`
}

// Plan resolves settings from the query string without running anything.
// The "name" parameter stands in for the upload's file name.
func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	settings, err := encoder.ParseSettings(q.Get)
	if err != nil {
		s.writeError(w, err)
		return
	}
	name := q.Get("name")
	if name == "" {
		name = "video.mp4"
	}
	p, err := pipeline.PlanFor(s.encoderName, name, settings)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{
		Preset:       string(settings.Preset),
		CRF:          p.Settings.CRF,
		AudioBitrate: p.Settings.AudioBitrate,
		MaxWidth:     p.Settings.MaxWidth,
		VideoCodec:   p.Settings.VideoCodec,
		MaxFramerate: p.Settings.MaxFramerate,
		DownloadName: p.DownloadName,
		Argv:         p.Argv,
	})
}

type presetInfo struct {
	Name         string `json:"name"`
	CRF          int    `json:"crf"`
	AudioBitrate string `json:"audio_bitrate"`
}

type presetsResponse struct {
	Presets       []presetInfo `json:"presets"`
	Resolutions   []string     `json:"resolutions"`
	AudioBitrates []string     `json:"audio_bitrates"`
	Codecs        []string     `json:"codecs"`
	MinCRF        int          `json:"min_crf"`
	MaxCRF        int          `json:"max_crf"`
}

// Presets lists the choices the form offers.
func (s *Server) Presets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, presetsCatalog())
}

func presetsCatalog() presetsResponse {
	var ps []presetInfo
	for _, p := range model.Presets {
		d := encoder.PresetDefaults(p)
		ps = append(ps, presetInfo{Name: string(p), CRF: d.CRF, AudioBitrate: d.AudioBitrate})
	}
	return presetsResponse{
		Presets:       ps,
		Resolutions:   []string{"original", "1080p", "720p", "480p"},
		AudioBitrates: bitrate.AudioTokens,
		Codecs:        []string{string(model.CodecH264), string(model.CodecH265)},
		MinCRF:        encoder.MinCRF,
		MaxCRF:        encoder.MaxCRF,
	}
}

type encoderResponse struct {
	Available bool     `json:"available"`
	Simulated bool     `json:"simulated"`
	Path      string   `json:"path,omitempty"`
	Version   string   `json:"version,omitempty"`
	Searched  []string `json:"searched,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Encoder reports whether the encoder can be found and its version line.
func (s *Server) Encoder(w http.ResponseWriter, r *http.Request) {
	resp := encoderResponse{Simulated: s.simulated}
	path, err := deps.LocateEncoder(s.encoderName, s.encoderOverride)
	if err != nil {
		var ue *deps.UnavailableError
		if errors.As(err, &ue) {
			resp.Searched = ue.Searched
		}
		resp.Error = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Available = true
	resp.Path = path
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if v, verr := deps.EncoderVersion(ctx, path); verr == nil {
		resp.Version = v
	} else {
		resp.Error = verr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Simulated bool   `json:"simulated"`
	GoVersion string `json:"go_version"`
}

// Health is a liveness probe.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Simulated: s.simulated,
		GoVersion: runtime.Version(),
	})
}

type errorBody struct {
	Error    string   `json:"error"`
	Field    string   `json:"field,omitempty"`
	ExitCode *int     `json:"exit_code,omitempty"`
	Stderr   string   `json:"stderr,omitempty"`
	Searched []string `json:"searched,omitempty"`
}

// writeError maps pipeline errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		ve  *encoder.ValidationError
		ue  *deps.UnavailableError
		ee  *pipeline.EncodeError
		ioe *pipeline.IOError
	)
	switch {
	case errors.As(err, &ve):
		writeJSONError(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &ue):
		writeJSONError(w, http.StatusServiceUnavailable, errorBody{Error: ue.Error(), Searched: ue.Searched})
	case errors.As(err, &ee):
		code := ee.ExitCode
		writeJSONError(w, http.StatusUnprocessableEntity, errorBody{Error: ee.Error(), ExitCode: &code, Stderr: ee.Stderr})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, http.StatusServiceUnavailable, errorBody{Error: "request cancelled"})
	case errors.As(err, &ioe):
		s.log.Error("compression i/o failure", "op", ioe.Op, "error", ioe.Err)
		writeJSONError(w, http.StatusInternalServerError, errorBody{Error: ioe.Error()})
	default:
		s.log.Error("compression failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, body)
}
