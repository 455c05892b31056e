package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/ARUMANDESU/validation"
	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	identity "github.com/ARUMANDESU/storefront-identity"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

var localeFiles = []string{
	"locales/en.toml",
	"locales/kk.toml",
	"locales/ru.toml",
	"locales/validation.en.toml",
	"locales/validation.kk.toml",
	"locales/validation.ru.toml",
}

var supported = []language.Tag{language.English, language.Kazakh, language.Russian}

type ErrorHandler struct {
	bundle     *i18n.Bundle
	matcher    language.Matcher
	localizers map[language.Tag]*i18n.Localizer
}

func NewErrorHandler() (*ErrorHandler, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, f := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(identity.Locales, f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	localizers := make(map[language.Tag]*i18n.Localizer, len(supported))
	for _, tag := range supported {
		localizers[tag] = i18n.NewLocalizer(bundle, tag.String())
	}

	return &ErrorHandler{
		bundle:     bundle,
		matcher:    language.NewMatcher(supported),
		localizers: localizers,
	}, nil
}

// Localizer picks the best supported language from an Accept-Language value.
func (h *ErrorHandler) Localizer(acceptLanguage string) *i18n.Localizer {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, _ := h.matcher.Match(tags...)
	return h.localizers[supported[idx]]
}

// Message localizes a plain message key for the request language.
func (h *ErrorHandler) Message(r *http.Request, key string) string {
	msg, err := h.Localizer(r.Header.Get("Accept-Language")).Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return key
	}
	return msg
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, span trace.Span, err error, msg string) {
	otelx.RecordSpanError(span, err, msg)
	localizer := h.Localizer(r.Header.Get("Accept-Language"))

	var appErr *errorx.I18nError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatusCode()
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), msg, "error", err)
		} else {
			slog.DebugContext(r.Context(), msg, "error", err)
		}
		writeError(w, r, appErr.Code, appErr.Localize(localizer), status)
		return
	}

	var valErrs validation.Errors
	if errors.As(err, &valErrs) {
		fields := make([]string, 0, len(valErrs))
		for field := range valErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var b strings.Builder
		for _, field := range fields {
			fmt.Fprintf(&b, "%s: %s; ", field, localizeValidation(localizer, valErrs[field]))
		}
		writeError(w, r, errorx.CodeValidationFailed, strings.TrimSuffix(b.String(), " "), http.StatusBadRequest)
		return
	}

	var valErr validation.Error
	if errors.As(err, &valErr) {
		writeError(w, r, errorx.CodeValidationFailed, localizeValidation(localizer, valErr), http.StatusBadRequest)
		return
	}

	slog.ErrorContext(r.Context(), "unhandled error", "error", err, "op", msg)
	internalErr := errorx.NewInternalError().WithCause(err)
	writeError(w, r, internalErr.Code, internalErr.Localize(localizer), internalErr.HTTPStatusCode())
}

func localizeValidation(localizer *i18n.Localizer, err error) string {
	var valErr validation.Error
	if !errors.As(err, &valErr) {
		return err.Error()
	}
	msg, lerr := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    valErr.Code(),
		TemplateData: valErr.Params(),
	})
	if lerr != nil {
		return valErr.Error()
	}
	return msg
}

// RateLimited writes the localized 429 response.
func (h *ErrorHandler) RateLimited(w http.ResponseWriter, r *http.Request) {
	e := errorx.NewRateLimitExceeded()
	writeError(w, r, e.Code, e.Localize(h.Localizer(r.Header.Get("Accept-Language"))), e.HTTPStatusCode())
}

func writeError(w http.ResponseWriter, r *http.Request,
	code errorx.Code,
	message string,
	status int,
) {
	response := Envelope{
		"code":    code,
		"message": message,
		"success": false,
	}

	err := WriteJSON(w, status, response, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
