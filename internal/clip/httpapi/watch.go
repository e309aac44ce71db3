package httpapi

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cliplink/internal/clip/models"
	"cliplink/internal/clip/service"
)

// The watch page is the unfurl target for chat apps, so the head carries the
// full og/twitter tag set. Player dimensions are fixed at 1920x1080 whatever
// the actual media says. Everything interpolated goes through html/template's
// contextual escaping; owner and filename are attacker-controlled.
var watchPageTemplate = template.Must(template.New("watch").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>

    <meta property="og:type" content="video.other">
    <meta property="og:title" content="{{.OGTitle}}">
    <meta property="og:description" content="{{.Description}}">
    <meta property="og:url" content="{{.CanonicalURL}}">
    <meta property="og:video" content="{{.VideoURL}}">
    <meta property="og:video:url" content="{{.VideoURL}}">
    <meta property="og:video:secure_url" content="{{.VideoURL}}">
    <meta property="og:video:type" content="video/mp4">
    <meta property="og:video:width" content="1920">
    <meta property="og:video:height" content="1080">
    <meta name="twitter:card" content="player">
    <meta name="twitter:player" content="{{.VideoURL}}">
    <meta name="twitter:player:width" content="1920">
    <meta name="twitter:player:height" content="1080">

    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            background: #0e0e10;
            color: #efeff1;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
            padding: 20px;
        }
        .container { max-width: 1400px; width: 100%; }
        video {
            width: 100%;
            background: #000;
            border-radius: 8px;
            box-shadow: 0 8px 32px rgba(0,0,0,0.5);
        }
        .info {
            margin-top: 20px;
            padding: 20px;
            background: #18181b;
            border-radius: 8px;
        }
        .info h2 { margin: 0 0 10px 0; color: #fff; }
        .stats { color: #adadb8; font-size: 14px; margin-bottom: 15px; }
        .copy-btn {
            padding: 12px 24px;
            background: #9147ff;
            color: white;
            border: none;
            border-radius: 6px;
            cursor: pointer;
            font-size: 14px;
            font-weight: 600;
            transition: background 0.2s;
        }
        .copy-btn:hover { background: #772ce8; }
        .copy-btn.copied { background: #00c853; }
    </style>
</head>
<body>
    <div class="container">
        <video controls autoplay muted loop>
            <source src="{{.VideoURL}}" type="video/mp4">
        </video>
        <div class="info">
            <h2>{{.Filename}}</h2>
            <div class="stats">
                By <strong>{{.Owner}}</strong> &bull;
                {{.DurationLabel}} &bull;
                {{.Resolution}} @ {{.FPSLabel}}fps &bull;
                {{.Views}} views
            </div>
            <button class="copy-btn" onclick="copyLink()">Copy Link</button>
        </div>
    </div>
    <script>
        function copyLink() {
            navigator.clipboard.writeText(window.location.href).then(() => {
                const btn = document.querySelector('.copy-btn');
                btn.textContent = 'Copied!';
                btn.classList.add('copied');
                setTimeout(() => {
                    btn.textContent = 'Copy Link';
                    btn.classList.remove('copied');
                }, 2000);
            });
        }
    </script>
</body>
</html>`))

var notFoundPageTemplate = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Clip not found</title>
    <style>
        body {
            background: #0e0e10;
            color: #efeff1;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
        }
    </style>
</head>
<body>
    <h1>This clip does not exist or was removed.</h1>
</body>
</html>`))

type watchPageData struct {
	Title         string
	OGTitle       string
	Description   string
	CanonicalURL  string
	VideoURL      string
	Owner         string
	Filename      string
	DurationLabel string
	Resolution    string
	FPSLabel      string
	Views         int64
}

func newWatchPageData(d *service.WatchData) watchPageData {
	clip := d.Clip

	duration := "0.0s"
	if clip.DurationSeconds != nil {
		duration = fmt.Sprintf("%.1fs", *clip.DurationSeconds)
	}
	resolution := "Unknown"
	if clip.Resolution != nil {
		resolution = *clip.Resolution
	}
	fps := "?"
	if clip.FPS != nil {
		fps = fmt.Sprintf("%d", *clip.FPS)
	}

	return watchPageData{
		Title:         clip.Owner + "'s Clip",
		OGTitle:       clip.Owner + "'s Game Clip",
		Description:   fmt.Sprintf("%s • %s • %d views", clip.Filename, duration, clip.Views),
		CanonicalURL:  d.WatchURL,
		VideoURL:      d.VideoURL,
		Owner:         clip.Owner,
		Filename:      clip.Filename,
		DurationLabel: duration,
		Resolution:    resolution,
		FPSLabel:      fps,
		Views:         clip.Views,
	}
}

// WatchPage renders the embeddable player document and bumps the view
// counter as a side effect of the lookup.
func (h *Handler) WatchPage(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.WatchClip(r.Context(), chi.URLParam(r, "clipID"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidArgument) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			if err := notFoundPageTemplate.Execute(w, nil); err != nil {
				h.logger.Error().Err(err).Msg("failed to render not found page")
			}
			return
		}
		h.logger.Error().Err(err).Msg("watch page lookup failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := watchPageTemplate.Execute(w, newWatchPageData(data)); err != nil {
		h.logger.Error().Err(err).Str("clip_id", data.Clip.ID).Msg("failed to render watch page")
	}
}
