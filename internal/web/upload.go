package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/pipeline"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tasks"
)

const (
	defaultFormats   = "video,srt"
	multipartMemory  = 32 << 20
	uploadIDLength   = 8
	fallbackBaseName = "upload"
)

// parseUpload validates the form, stores the file and prepares the task's
// output directory. The int is the HTTP status to report on error.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*Request, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			return nil, http.StatusRequestEntityTooLarge,
				fmt.Errorf("file is larger than the %d MB limit", s.maxUpload>>20)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("no file uploaded")
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if !audio.IsMediaFile(name) {
		return nil, http.StatusBadRequest,
			fmt.Errorf("unsupported file type %q", strings.ToLower(filepath.Ext(name)))
	}

	req, err := s.formOptions(r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	id := uuid.NewString()[:uploadIDLength]
	req.Input = filepath.Join(s.uploadDir, id+"_"+name)
	req.OutputDir = filepath.Join(s.outputDir, strings.TrimSuffix(name, filepath.Ext(name))+"_"+id)

	if err := saveUpload(file, req.Input); err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		_ = os.Remove(req.Input)
		return nil, http.StatusInternalServerError, fmt.Errorf("create output directory: %w", err)
	}
	s.logger.Infow("upload stored",
		"file", name,
		"bytes", header.Size,
		"kind", req.Kind,
		"output_dir", req.OutputDir,
	)
	return req, http.StatusAccepted, nil
}

func (s *Server) formOptions(r *http.Request) (*Request, error) {
	req := &Request{Kind: tasks.KindGenerate}
	switch kind := strings.TrimSpace(r.FormValue("kind")); kind {
	case "", string(tasks.KindGenerate):
	case string(tasks.KindDub):
		req.Kind = tasks.KindDub
	default:
		return nil, fmt.Errorf("unknown task kind %q", kind)
	}

	formats := strings.TrimSpace(r.FormValue("formats"))
	if formats == "" {
		formats = defaultFormats
	}
	parsed, err := pipeline.ParseFormats(formats)
	if err != nil {
		return nil, err
	}
	req.Formats = parsed

	styleName := strings.TrimSpace(r.FormValue("style"))
	if styleName == "" {
		styleName = string(style.Default)
	}
	name, err := style.ParseName(styleName)
	if err != nil {
		return nil, err
	}
	req.StyleName = string(name)
	req.Style = s.styles.Lookup(string(name))

	lang := strings.TrimSpace(r.FormValue("language"))
	if lang != "" && !strings.EqualFold(lang, "auto") {
		code, err := language.Parse(lang)
		if err != nil {
			return nil, err
		}
		req.Language = string(code)
	}

	if req.Kind == tasks.KindDub {
		codes, err := language.ParseList(r.FormValue("languages"))
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			return nil, fmt.Errorf("dubbing needs at least one target language")
		}
		for _, c := range codes {
			req.Languages = append(req.Languages, string(c))
		}
	}

	req.Model = strings.TrimSpace(r.FormValue("model"))
	req.IncludeTimestamps = r.FormValue("include_timestamps") != ""
	req.Enhance = r.FormValue("no_enhance_audio") == ""
	return req, nil
}

func saveUpload(src io.Reader, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(path)
		return fmt.Errorf("store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

// discard removes what parseUpload created for a request that never ran.
func (s *Server) discard(req *Request) {
	_ = os.Remove(req.Input)
	_ = os.RemoveAll(req.OutputDir)
}

// chains carry internal buffers, so each call builds its own
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// sanitizeFilename keeps the base name with ASCII letters, digits, dots,
// dashes and underscores. Accents are folded ("Şarkı" -> "Sark_").
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if folded, _, err := transform.String(stripMarks(), name); err == nil {
		name = folded
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := b.String()
	ext := filepath.Ext(clean)
	base := strings.TrimLeft(strings.TrimSuffix(clean, ext), "._")
	if strings.Trim(base, "_") == "" {
		base = fallbackBaseName
	}
	return base + ext
}
