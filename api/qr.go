package api

import (
	"net/http"
	"strconv"

	"github.com/qrlab/qrgen/qr"
)

// Caps for request-driven parameters. Output size grows quadratically in
// each of these, so none may come from a request unbounded.
const (
	maxImageSize  = 2048 // total output side in pixels
	maxBorder     = 32   // quiet zone modules
	maxModuleSize = 32   // pixels per module
)

// handleQRImage streams a freshly encoded PNG without persisting it. The
// size parameter is the approximate total width in pixels, symbol plus
// quiet zone.
func (s *Server) handleQRImage(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("payload")
	if payload == "" {
		writeError(w, http.StatusBadRequest, "payload query parameter is required")
		return
	}

	size := queryInt(r, "size", 256)
	if size > maxImageSize {
		size = maxImageSize
	}
	border := queryInt(r, "border", s.Defaults.Border)
	if border > maxBorder {
		border = maxBorder
	}

	level := s.Defaults.Level
	if v := r.URL.Query().Get("level"); v != "" {
		parsed, err := qr.ParseLevel(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		level = parsed
	}

	sym, err := qr.Encode(payload, qr.Config{Level: level, ModuleSize: 1, Border: border, Fit: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scale := size / (sym.Size() + 2*border)
	if scale < 1 {
		scale = 1
	}
	img := qr.Render(sym.WithModuleSize(scale))

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := qr.EncodePNG(w, img); err != nil {
		s.Log.Error("stream qr png", "error", err)
	}
}

func (s *Server) handleGalleryPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(galleryPageHTML))
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

const galleryPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>qrgen - Fixture Gallery</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    background: #0a0a0a;
    color: #e0e0e0;
    padding: 32px;
  }
  h1 { font-size: 20px; font-weight: 600; margin-bottom: 8px; }
  .subtitle { color: #888; font-size: 14px; margin-bottom: 24px; }
  #grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(240px, 1fr));
    gap: 16px;
  }
  .card {
    background: #1a1a1a;
    border: 1px solid #333;
    border-radius: 16px;
    padding: 16px;
    text-align: center;
  }
  .card img {
    width: 100%;
    background: #fff;
    padding: 8px;
    border-radius: 8px;
    image-rendering: pixelated;
  }
  .name { font-size: 14px; font-weight: 600; margin-top: 12px; }
  .meta { color: #888; font-size: 12px; margin-top: 4px; }
  .payload {
    color: #4ade80;
    font-size: 12px;
    margin-top: 8px;
    word-break: break-all;
  }
  #status { color: #888; font-size: 13px; margin-top: 24px; }
  .empty { color: #888; font-size: 14px; padding: 48px 0; text-align: center; }
</style>
</head>
<body>
<h1>Fixture Gallery</h1>
<p class="subtitle">Generated QR test images. Scan one with a phone to verify its payload.</p>
<div id="grid"></div>
<div id="empty" class="empty" style="display:none">No artifacts yet. Run the fixtures command or POST /generate.</div>
<div id="status"></div>
<script>
(function() {
  var grid = document.getElementById('grid');
  var emptyEl = document.getElementById('empty');
  var statusEl = document.getElementById('status');

  function clearChildren(el) {
    while (el.firstChild) el.removeChild(el.firstChild);
  }

  function card(art) {
    var div = document.createElement('div');
    div.className = 'card';

    var img = document.createElement('img');
    img.setAttribute('src', '/fixtures/' + encodeURIComponent(art.name) + '?t=' + Date.now());
    img.setAttribute('alt', art.name);
    div.appendChild(img);

    var name = document.createElement('div');
    name.className = 'name';
    name.textContent = art.name;
    div.appendChild(name);

    var meta = document.createElement('div');
    meta.className = 'meta';
    var parts = [art.width + 'x' + art.height + ' px'];
    if (art.version) parts.push('v' + art.version + '-' + art.level);
    if (art.source) parts.push('from ' + art.source);
    meta.textContent = parts.join(' | ');
    div.appendChild(meta);

    if (art.payload) {
      var payload = document.createElement('div');
      payload.className = 'payload';
      payload.textContent = art.payload;
      div.appendChild(payload);
    }
    return div;
  }

  function refresh() {
    fetch('/fixtures')
      .then(function(r) { return r.json(); })
      .then(function(arts) {
        clearChildren(grid);
        if (!arts || arts.length === 0) {
          emptyEl.style.display = 'block';
          statusEl.textContent = '';
          return;
        }
        emptyEl.style.display = 'none';
        for (var i = 0; i < arts.length; i++) {
          grid.appendChild(card(arts[i]));
        }
        statusEl.textContent = arts.length + ' artifact' + (arts.length === 1 ? '' : 's');
      })
      .catch(function() {
        statusEl.textContent = 'Connection error, retrying...';
      });
  }

  refresh();
  setInterval(refresh, 5000);
})();
</script>
</body>
</html>`
