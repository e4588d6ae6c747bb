package dashboard

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/models"
)

const (
	InvestmentPath = "/api/insights/investment"
	ThesisPath     = "/api/insights/thesis"
)

// Dashboard is the composition root for the client-side state.
type Dashboard struct {
	Companies *Store[models.Company]
	Theses    *Store[models.Thesis]
	API       *API
}

// NewCompanyStore builds the store behind the company grid.
func NewCompanyStore(client HTTPDoer, baseURL string, logger *common.Logger) *Store[models.Company] {
	return NewStore[models.Company](client, baseURL, InvestmentPath, "companies", "investment", logger)
}

// NewThesisStore builds the store of narrative theses.
func NewThesisStore(client HTTPDoer, baseURL string, logger *common.Logger) *Store[models.Thesis] {
	return NewStore[models.Thesis](client, baseURL, ThesisPath, "investments", "thesis", logger)
}

// New wires both stores and the proxy client against one server.
func New(client HTTPDoer, baseURL string, logger *common.Logger) *Dashboard {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Dashboard{
		Companies: NewCompanyStore(client, baseURL, logger),
		Theses:    NewThesisStore(client, baseURL, logger),
		API:       NewAPI(client, baseURL),
	}
}

// NewFromConfig builds a Dashboard using an *http.Client with the configured timeout.
func NewFromConfig(cfg common.DashboardConfig, logger *common.Logger) *Dashboard {
	client := &http.Client{Timeout: cfg.GetTimeout()}
	return New(client, cfg.APIURL, logger)
}

// CompanyDetail is a company joined with its narrative thesis, if any.
type CompanyDetail struct {
	Company models.Company
	Thesis  *models.Thesis
}

// FindCompany looks up a loaded company by ticker.
func (d *Dashboard) FindCompany(ticker string) (*models.Company, bool) {
	for _, c := range d.Companies.Snapshot().Records {
		if models.SameTicker(c.Ticker, ticker) {
			return &c, true
		}
	}
	return nil, false
}

// FindThesis looks up a loaded thesis by ticker.
func (d *Dashboard) FindThesis(ticker string) (*models.Thesis, bool) {
	for _, t := range d.Theses.Snapshot().Records {
		if models.SameTicker(t.Ticker, ticker) {
			return &t, true
		}
	}
	return nil, false
}

// Detail joins a company with its thesis. A missing thesis is not an error.
func (d *Dashboard) Detail(ticker string) (*CompanyDetail, bool) {
	company, ok := d.FindCompany(ticker)
	if !ok {
		return nil, false
	}
	detail := &CompanyDetail{Company: *company}
	if thesis, ok := d.FindThesis(ticker); ok {
		detail.Thesis = thesis
	}
	return detail, true
}
