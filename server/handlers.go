package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/wudi/fraudguard/docimage"
	"github.com/wudi/fraudguard/face"
	"github.com/wudi/fraudguard/identity"
	"github.com/wudi/fraudguard/observability"
	"github.com/wudi/fraudguard/ocr"
	"github.com/wudi/fraudguard/report"
	"github.com/wudi/fraudguard/rules"
	"github.com/wudi/fraudguard/session"
	"github.com/wudi/fraudguard/similarity"
	"github.com/wudi/fraudguard/transactions"
)

var documentMessages = map[similarity.Band]string{
	similarity.BandGenuine:    "No forgery detected.",
	similarity.BandSuspicious: "Minor differences detected.",
	similarity.BandForged:     "High chance of forgery.",
}

var signatureMessages = map[similarity.Band]string{
	similarity.BandGenuine:    "Signatures appear genuine.",
	similarity.BandSuspicious: "Partial match - suspicious.",
	similarity.BandForged:     "Signatures likely forged.",
}

type upload struct {
	name string
	data []byte
}

// readUploads pulls the named multipart files, enforcing the upload cap.
func (s *Server) readUploads(r *http.Request, fields ...string) ([]upload, error) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse upload: %w", err)
	}
	out := make([]upload, 0, len(fields))
	for _, field := range fields {
		f, hdr, err := r.FormFile(field)
		if err != nil {
			return nil, fmt.Errorf("missing %s: %w", field, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, s.maxUploadBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", field, err)
		}
		if int64(len(data)) > s.maxUploadBytes {
			return nil, fmt.Errorf("%s exceeds upload limit", field)
		}
		out = append(out, upload{name: hdr.Filename, data: data})
	}
	return out, nil
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := s.store.Get(id); err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return "", false
	}
	return id, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	rec := s.store.Create()
	s.log.Info("session created", observability.String("session", rec.ID))
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	verdicts, err := rules.Eval(r.Context(), rec, s.rules)
	if err != nil {
		s.log.Error("rule evaluation failed", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "Rule evaluation failed.")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		recordResponse
		Verdicts []rules.Verdict `json:"verdicts"`
	}{toRecordResponse(rec), verdicts})
}

// compareUploads is the shared forgery/signature path: decode both sides,
// normalize to a common grayscale size, score.
func (s *Server) compareUploads(ups []upload, size int) (float64, *image.Gray, error) {
	a, err := docimage.Decode(ups[0].name, ups[0].data)
	if err != nil {
		return 0, nil, err
	}
	b, err := docimage.Decode(ups[1].name, ups[1].data)
	if err != nil {
		return 0, nil, err
	}
	ga := docimage.Normalize(a, size, size)
	gb := docimage.Normalize(b, size, size)
	return similarity.SSIM(ga, gb)
}

func (s *Server) handleForgery(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	ups, err := s.readUploads(r, "original", "suspect")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please upload both files.")
		return
	}
	started := time.Now()
	score, diff, err := s.compareUploads(ups, docimage.DocumentSize)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, err := s.store.Update(id, func(rec *session.Record) {
		rec.ForgeryScore = session.Ptr(score)
	}); err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	band := similarity.DocumentBand(score)
	s.log.Info("forgery analysis complete",
		observability.String("session", id),
		observability.Float64("score", score),
		observability.String("band", band.String()),
		observability.Int64(observability.MetricForgeryTime, time.Since(started).Milliseconds()))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"score":    score,
		"band":     band.String(),
		"message":  documentMessages[band],
		"diff_png": encodeDiffPNG(diff),
	})
}

func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	ups, err := s.readUploads(r, "original", "suspect")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Upload both signatures.")
		return
	}
	started := time.Now()
	score, _, err := s.compareUploads(ups, docimage.SignatureSize)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, err := s.store.Update(id, func(rec *session.Record) {
		rec.SignatureScore = session.Ptr(score)
	}); err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	band := similarity.SignatureBand(score)
	s.log.Info("signature analysis complete",
		observability.String("session", id),
		observability.Float64("score", score),
		observability.Int64(observability.MetricSignatureTime, time.Since(started).Milliseconds()))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"score":   score,
		"band":    band.String(),
		"message": signatureMessages[band],
	})
}

func (s *Server) runOCR(r *http.Request, kind string) (string, error) {
	ups, err := s.readUploads(r, "file")
	if err != nil {
		return "", errMissingUpload
	}
	img, err := docimage.Decode(ups[0].name, ups[0].data)
	if err != nil {
		return "", err
	}
	in, err := ocr.InputFromImage(kind, img, ocr.WithLanguages(s.ocrLanguages...))
	if err != nil {
		return "", err
	}
	res, err := s.ocrEngine.Recognize(r.Context(), in)
	if err != nil {
		return "", err
	}
	return res.PlainText, nil
}

var errMissingUpload = errors.New("missing upload")

func (s *Server) handleAadhaar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	started := time.Now()
	text, err := s.runOCR(r, "aadhaar")
	if errors.Is(err, errMissingUpload) {
		writeError(w, http.StatusBadRequest, "Upload Aadhaar file.")
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	match, found := identity.BestAadhaar(text)
	if _, err := s.store.Update(id, func(rec *session.Record) {
		rec.AadhaarText = session.Ptr(text)
		if found {
			rec.AadhaarNumber = session.Ptr(match.Value)
			rec.AadhaarValid = session.Ptr(match.Valid)
		}
	}); err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	s.log.Info("aadhaar OCR complete",
		observability.String("session", id),
		observability.Bool("found", found),
		observability.Int64(observability.MetricOCRTime, time.Since(started).Milliseconds()))

	resp := map[string]interface{}{"text": text, "found": found}
	if found {
		resp["number"] = match.Value
		resp["valid"] = match.Valid
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePAN(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	started := time.Now()
	text, err := s.runOCR(r, "pan")
	if errors.Is(err, errMissingUpload) {
		writeError(w, http.StatusBadRequest, "Upload PAN file.")
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	match, found := identity.BestPAN(text)
	if _, err := s.store.Update(id, func(rec *session.Record) {
		rec.PANText = session.Ptr(text)
		if found {
			rec.PANNumber = session.Ptr(match.Value)
			rec.PANValid = session.Ptr(match.Valid)
		}
	}); err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	s.log.Info("pan OCR complete",
		observability.String("session", id),
		observability.Bool("found", found),
		observability.Int64(observability.MetricOCRTime, time.Since(started).Milliseconds()))

	resp := map[string]interface{}{"text": text, "found": found}
	if found {
		resp["number"] = match.Value
		resp["valid"] = match.Valid
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFace(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	ups, err := s.readUploads(r, "id", "live")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please upload both ID and live photos.")
		return
	}
	started := time.Now()
	match, err := s.faceEngine.Verify(r.Context(),
		face.Input{ID: "id-photo", Image: ups[0].data},
		face.Input{ID: "live-photo", Image: ups[1].data})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Face verification error: %v", err))
		return
	}
	if _, err := s.store.Update(id, func(rec *session.Record) {
		rec.FaceDistance = session.Ptr(match.Distance)
		rec.FaceVerified = session.Ptr(match.Verified)
	}); err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	s.log.Info("face match complete",
		observability.String("session", id),
		observability.Float64("distance", match.Distance),
		observability.Bool("verified", match.Verified),
		observability.Int64(observability.MetricFaceTime, time.Since(started).Milliseconds()))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"distance":  match.Distance,
		"threshold": match.Threshold,
		"verified":  match.Verified,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	ups, err := s.readUploads(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Upload CSV.")
		return
	}
	started := time.Now()
	set, err := transactions.ReadCSV(bytes.NewReader(ups[0].data))
	if errors.Is(err, transactions.ErrMissingAmountColumn) {
		writeError(w, http.StatusUnprocessableEntity, "CSV must have 'amount' column.")
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("CSV read error: %v", err))
		return
	}
	rep := transactions.DetectOutliers(set)
	if _, err := s.store.Update(id, func(rec *session.Record) {
		rec.FraudCount = session.Ptr(rep.Count)
		rec.FraudThreshold = session.Ptr(rep.Threshold)
	}); err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	s.log.Info("transaction analysis complete",
		observability.String("session", id),
		observability.Int("flagged", rep.Count),
		observability.Int64(observability.MetricTransactionsTime, time.Since(started).Milliseconds()))

	rowErrors := make([]string, 0, len(set.Errors))
	for _, e := range set.Errors {
		rowErrors = append(rowErrors, e.Error())
	}
	flagged := make([]map[string]interface{}, 0, len(rep.Flagged))
	for _, tx := range rep.Flagged {
		flagged = append(flagged, map[string]interface{}{
			"line":   tx.Line,
			"amount": tx.Amount,
			"fields": tx.Fields,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      rep.Count,
		"threshold":  rep.Threshold,
		"mean":       rep.Mean,
		"stddev":     rep.StdDev,
		"flagged":    flagged,
		"row_errors": rowErrors,
	})
}

type reportRequest struct {
	Customer  string `json:"customer"`
	Reference string `json:"reference"`
	Remarks   string `json:"remarks"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown session.")
		return
	}
	var req reportRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid report request.")
			return
		}
	}
	started := time.Now()
	rep := report.Build(rec, report.Meta{
		Customer:    req.Customer,
		Reference:   req.Reference,
		Remarks:     req.Remarks,
		GeneratedAt: started,
	})

	switch r.URL.Query().Get("format") {
	case "", "pdf":
		var buf bytes.Buffer
		if err := report.WritePDF(&buf, rep); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("PDF generation error: %v", err))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=fraud_report_%s.pdf", started.Format("20060102_150405")))
		w.Write(buf.Bytes())
	case "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := report.WriteMarkdown(w, rep); err != nil {
			s.log.Error("markdown export failed", observability.Error("err", err))
		}
	case "html":
		html, err := report.HTML(rep)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Report render error: %v", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
	default:
		writeError(w, http.StatusBadRequest, "Unknown report format.")
		return
	}
	s.log.Info("report generated",
		observability.String("session", rec.ID),
		observability.Int64(observability.MetricReportTime, time.Since(started).Milliseconds()))
}

func encodeDiffPNG(diff *image.Gray) string {
	if diff == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, diff); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
