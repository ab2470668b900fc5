package labels

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	"wmsadmin/infrastructure/sqlite"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PalletLabelQueryHandler renders the label PDF of an imported pallet record.
func PalletLabelQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := url.PathUnescape(chi.URLParam(r, "code"))
		if err != nil {
			http.Error(w, "invalid pallet code", http.StatusBadRequest)
			return
		}

		rec, err := LoadPalletRecord(r.Context(), db, code)
		if errors.Is(err, ErrPalletNotFound) {
			http.Error(w, "pallet not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("load pallet record failed", slog.String("pallet", code), slog.Any("err", err))
			http.Error(w, "failed to load pallet", http.StatusInternalServerError)
			return
		}

		pdfBytes, err := renderPalletLabelPDF(rec, time.Now())
		if err != nil {
			slog.Error("render pallet label failed", slog.String("pallet", code), slog.Any("err", err))
			http.Error(w, "failed to build label pdf", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=pallet-%s-label.pdf", unsafeFileChars.ReplaceAllString(rec.Pallet, "_")))
		_, _ = w.Write(pdfBytes)
	}
}
