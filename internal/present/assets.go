package present

import (
	"fmt"
	"strings"
)

// DefaultAssetsBaseURL is used when no base URL is configured.
const DefaultAssetsBaseURL = "/assets"

// PlaceholderKind selects a placeholder image.
type PlaceholderKind string

const (
	PlaceholderCompany PlaceholderKind = "company"
	PlaceholderProduct PlaceholderKind = "product"
	PlaceholderWebsite PlaceholderKind = "website"
)

// Assets builds asset URLs under a base URL.
type Assets struct {
	BaseURL string
}

// NewAssets trims a trailing slash and falls back to DefaultAssetsBaseURL.
func NewAssets(baseURL string) Assets {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAssetsBaseURL
	}
	return Assets{BaseURL: baseURL}
}

func (a Assets) base() string {
	if a.BaseURL == "" {
		return DefaultAssetsBaseURL
	}
	return a.BaseURL
}

func (a Assets) CompanyLogo(companyID string) string {
	return fmt.Sprintf("%s/companies/%s/logo.svg", a.base(), companyID)
}

func (a Assets) CompanyHeader(companyID string) string {
	return fmt.Sprintf("%s/companies/%s/header.jpg", a.base(), companyID)
}

// ProductImage reports no image: product artwork is not published yet.
func (a Assets) ProductImage(productID string) (string, bool) {
	return "", false
}

func (a Assets) WebsiteScreenshot(websiteID string) string {
	return fmt.Sprintf("%s/websites/%s/screenshot.jpg", a.base(), websiteID)
}

func (a Assets) Icon(iconID string) string {
	return fmt.Sprintf("%s/icons/%s.svg", a.base(), iconID)
}

func (a Assets) TherapeuticAreaIcon(areaID string) string {
	return fmt.Sprintf("%s/therapeutic-areas/%s/icon.svg", a.base(), areaID)
}

func (a Assets) Placeholder(kind PlaceholderKind) string {
	return fmt.Sprintf("%s/placeholders/%s.svg", a.base(), kind)
}
