// Package controlplane implements the license control layer: it validates
// plugin requests, maps the plugin to an upstream product variant and
// normalizes the provider's reply into the client status vocabulary.
package controlplane

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
	"github.com/CloudNativeWorks/datalayer-license/internal/apierrors"
	"github.com/CloudNativeWorks/datalayer-license/internal/logger"
	"github.com/CloudNativeWorks/datalayer-license/internal/metrics"
	"github.com/CloudNativeWorks/datalayer-license/internal/responses"
	"github.com/CloudNativeWorks/datalayer-license/internal/upstream"
)

const (
	msgMethodNotAllowed = "Method not allowed. Use POST."
	msgInvalidAction    = "Invalid action. Use: check, activate, or deactivate."
	msgUnknownPlugin    = "Invalid or unknown plugin."
	msgKeyRequired      = "License key is required."
	msgValid            = "License is valid."
	msgNotValid         = "License is not valid."
	msgValidationFailed = "License validation failed."
	msgConnection       = "Error connecting to license server."
	msgActivated        = "License activated successfully."
	msgDeactivated      = "License deactivated successfully."
)

// ProductMap maps plugin ids to upstream variant ids.
type ProductMap map[string]string

// statusMap translates provider statuses; anything else is invalid.
var statusMap = map[string]dlmlicense.Status{
	upstream.StatusActive:   dlmlicense.StatusValid,
	upstream.StatusInactive: dlmlicense.StatusInvalid,
	upstream.StatusExpired:  dlmlicense.StatusExpired,
}

// MapStatus normalizes a provider status.
func MapStatus(providerStatus string) dlmlicense.Status {
	if s, ok := statusMap[strings.ToLower(strings.TrimSpace(providerStatus))]; ok {
		return s
	}
	return dlmlicense.StatusInvalid
}

// Handler serves check, activate and deactivate requests.
type Handler struct {
	provider upstream.Provider
	products ProductMap
	logg     *logger.Logger
	metrics  *metrics.LicenseMetrics
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) HandlerOption {
	return func(h *Handler) {
		h.logg = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.LicenseMetrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates a control-layer handler.
func NewHandler(provider upstream.Provider, products ProductMap, opts ...HandlerOption) *Handler {
	h := &Handler{
		provider: provider,
		products: products,
		logg:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		h.fail(ctx, w, "", apierrors.New(apierrors.CodeMethodNotAllowed, msgMethodNotAllowed))
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		h.fail(ctx, w, "", apierrors.Wrap(apierrors.CodeInternal, err, "decode request"))
		return
	}
	ctx = h.logg.WithAction(ctx, string(req.Action))
	ctx = h.logg.WithPlugin(ctx, req.Plugin)

	variantID, err := h.validateRequest(req)
	if err != nil {
		h.fail(ctx, w, req.Action, err)
		return
	}

	resp, err := h.dispatch(ctx, req, variantID)
	if err != nil {
		h.fail(ctx, w, req.Action, apierrors.Wrap(apierrors.CodeInternal, err, "dispatch"))
		return
	}

	h.metrics.IncRequest(string(req.Action), string(resp.Status))
	responses.WriteLicense(w, resp)
}

// validateRequest applies the checks in order and returns the variant id.
func (h *Handler) validateRequest(req dlmlicense.Request) (string, error) {
	if err := validate.Var(string(req.Action), actionRule); err != nil {
		return "", apierrors.Wrap(apierrors.CodeValidation, err, msgInvalidAction)
	}

	variantID, ok := h.products[req.Plugin]
	if req.Plugin == "" || !ok {
		return "", apierrors.New(apierrors.CodeValidation, msgUnknownPlugin)
	}

	if err := validate.Var(req.LicenseKey, "required"); err != nil {
		return "", apierrors.Wrap(apierrors.CodeValidation, err, msgKeyRequired)
	}

	if strings.TrimSpace(variantID) == "" {
		return "", apierrors.New(apierrors.CodeConfiguration, "no variant id configured for plugin "+req.Plugin)
	}
	return variantID, nil
}

func (h *Handler) dispatch(ctx context.Context, req dlmlicense.Request, variantID string) (dlmlicense.Response, error) {
	switch req.Action {
	case dlmlicense.ActionCheck:
		return h.validateLicense(ctx, req.LicenseKey, variantID)

	case dlmlicense.ActionActivate:
		// Activation is a successful validation; the provider tracks no
		// per-site activations through this endpoint.
		resp, err := h.validateLicense(ctx, req.LicenseKey, variantID)
		if err != nil || !resp.Success {
			return resp, err
		}
		return dlmlicense.Response{Success: true, Status: dlmlicense.StatusValid, Message: msgActivated}, nil

	case dlmlicense.ActionDeactivate:
		return dlmlicense.Response{Success: true, Status: dlmlicense.StatusInactive, Message: msgDeactivated}, nil
	}
	return dlmlicense.Response{}, errors.New("unhandled action " + string(req.Action))
}

func (h *Handler) validateLicense(ctx context.Context, key, variantID string) (dlmlicense.Response, error) {
	start := time.Now()
	v, err := h.provider.Validate(ctx, key, variantID)

	var pe *upstream.ProviderError
	switch {
	case err == nil:
		h.metrics.ObserveUpstream("ok", time.Since(start))
	case errors.As(err, &pe):
		h.metrics.ObserveUpstream("rejected", time.Since(start))
		msg := pe.Detail
		if msg == "" {
			msg = msgValidationFailed
		}
		return dlmlicense.Response{Success: false, Status: dlmlicense.StatusInvalid, Message: msg}, nil
	case errors.Is(err, upstream.ErrTransport):
		h.metrics.ObserveUpstream("transport", time.Since(start))
		h.logg.Warn(h.logg.WithField(ctx, "error", err.Error()), "upstream.unreachable")
		return dlmlicense.Response{Success: false, Status: dlmlicense.StatusError, Message: msgConnection}, nil
	default:
		return dlmlicense.Response{}, err
	}

	status := MapStatus(v.Status)
	if status == dlmlicense.StatusValid {
		return dlmlicense.Response{Success: true, Status: status, Message: msgValid}, nil
	}
	return dlmlicense.Response{Success: false, Status: status, Message: msgNotValid}, nil
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, action dlmlicense.Action, err error) {
	h.metrics.IncRequest(string(action), string(dlmlicense.StatusError))
	responses.WriteError(ctx, h.logg, w, err)
}
