package agents

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinehound/models"
	"cinehound/services/linkhealth"
)

// File hosts the mirrors link out to. Anchors pointing at these are direct
// download candidates even without download-ish anchor text.
var downloadHosts = []string{
	"drive.google.com", "mega.nz", "mediafire.com", "zippyshare.com",
	"uploadrar.com", "ddownload.com", "katfile.com", "rapidgator.net",
	"nitroflare.com", "1fichier.com", "clicknupload.", "indishare.",
	"uptobox.com", "dropapk.", "gofile.io", "pixeldrain.com", "send.cm",
	"hubcloud.", "gdflix.", "filepress.",
}

var downloadTextHints = []string{
	"download", "direct link", "g-drive", "gdrive", "watch online", "server",
}

func isDownloadHost(link string) bool {
	host := hostOf(link)
	if host == "" {
		return false
	}
	for _, h := range downloadHosts {
		if strings.Contains(host, strings.TrimSuffix(h, ".")) {
			return true
		}
	}
	return false
}

func hasDownloadText(text string) bool {
	lower := strings.ToLower(text)
	for _, hint := range downloadTextHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// linkKind classifies an outgoing link for the extraction result.
func linkKind(link string) models.LinkKind {
	switch {
	case linkhealth.IsShortlinkURL(link):
		return models.LinkKindShortlink
	case linkhealth.IsStreamingURL(link):
		return models.LinkKindStreaming
	default:
		return models.LinkKindDirect
	}
}

// collectDownloadLinks walks every anchor in the document and keeps the ones
// that look like download links: known file hosts, shortlink/streaming
// services, or anchors with download-ish text. Duplicate URLs are dropped.
func collectDownloadLinks(doc *goquery.Document, baseURL string) []models.DownloadLink {
	var links []models.DownloadLink
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := absoluteURL(baseURL, href)
		if link == "" || !strings.HasPrefix(link, "http") {
			return
		}
		text := strings.TrimSpace(sel.Text())

		keep := isDownloadHost(link) ||
			linkhealth.IsShortlinkURL(link) ||
			linkhealth.IsStreamingURL(link) ||
			hasDownloadText(text)
		if !keep {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		links = append(links, models.DownloadLink{
			URL:      link,
			Text:     text,
			Host:     hostOf(link),
			Quality:  strings.Join(parseQuality(text), ", "),
			FileSize: parseFileSize(text),
			Kind:     linkKind(link),
		})
	})

	return links
}

// pageTitle returns the document title with site suffixes trimmed.
func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	for _, sep := range []string{" - ", " | ", " — "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
			break
		}
	}
	return title
}
