package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tradedeskhq/tradedesk-backend/api/responses"
	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	"github.com/tradedeskhq/tradedesk-backend/internal/pdf"
	quotation "github.com/tradedeskhq/tradedesk-backend/internal/quotations"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
)

// documentRenderer is the slice of pdf.Chain the export endpoints need.
type documentRenderer interface {
	Render(ctx context.Context, doc pdf.Document) ([]byte, error)
}

// QuotationPDF streams the quotation as a PDF attachment, trying each
// rendering strategy in order until one produces output.
func QuotationPDF(asm *quotation.Assembler, chain documentRenderer, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := pathID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := asm.Assemble(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := chain.Render(r.Context(), *doc)
		if err != nil {
			recordFailedExport(r, recorder, quotationID, doc.Number)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionQuotationPDF, quotationID, doc.Number)
		writePDF(w, pdf.Filename(doc.CustomerName, quotationID.String()), data)
	}
}

// QuotationPDFPreview returns the rendered HTML so the frontend can show
// an inline preview without paying for a PDF render.
func QuotationPDFPreview(asm *quotation.Assembler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := pathID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := asm.Assemble(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		html, err := pdf.RenderHTML(*doc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering preview"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	}
}

// PublicQuotationPDF serves customer-facing exports without a session.
// It renders with the dependency-free canvas strategy only, so a broken
// chromium install can never take the public link down. Every export is
// audited even though no actor is attached.
func PublicQuotationPDF(asm *quotation.Assembler, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	canvas := pdf.NewCanvasRenderer()
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := pathID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := asm.Assemble(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := canvas.Render(r.Context(), *doc)
		if err != nil {
			recordFailedExport(r, recorder, quotationID, doc.Number)
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "PDF generation failed"))
			return
		}

		recordActivity(r, recorder, enums.ActivityActionQuotationPDF, quotationID, doc.Number)
		writePDF(w, pdf.Filename(doc.CustomerName, quotationID.String()), data)
	}
}

// recordFailedExport audits an export whose entire strategy chain failed.
func recordFailedExport(r *http.Request, recorder *activity.Recorder, quotationID uuid.UUID, number string) {
	if recorder == nil {
		return
	}
	entry := activity.Entry{
		Action:   enums.ActivityActionQuotationPDF,
		Outcome:  enums.ActivityOutcomeFailure,
		EntityID: &quotationID,
		Detail:   number,
	}
	if actorID, ok := actorFromContext(r); ok {
		entry.ActorID = &actorID
	}
	recorder.Record(r.Context(), entry)
}

func writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
