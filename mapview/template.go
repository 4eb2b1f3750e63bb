// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
)

// Map presentation settings.
const (
	DefaultZoom     = 13
	TileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	MarkerIconPath  = "/assets/icons/location-marker.svg"
	LeafletVersion  = "1.9.4"
)

type fragmentData struct {
	Phase       string
	Message     string
	Lat         string
	Lng         string
	Zoom        int
	Popup       string
	TileURL     string
	Attribution string
	IconURL     string
}

// The marker script reads everything from data attributes and sets the popup
// through textContent so the location is never parsed as markup. Attribute
// names avoid "url" so html/template keeps the tile placeholders verbatim.
const fragmentHTML = `{{define "fragment"}}{{if eq .Phase "ready"}}<div class="map-container" style="height: 400px; width: 100%; border-radius: 14px;"
 data-lat="{{.Lat}}" data-lng="{{.Lng}}" data-zoom="{{.Zoom}}" data-popup="{{.Popup}}"
 data-tiles="{{.TileURL}}" data-attribution="{{.Attribution}}" data-icon="{{.IconURL}}"></div>
<script>
(function (el) {
  var d = el.dataset;
  var center = [parseFloat(d.lat), parseFloat(d.lng)];
  var map = L.map(el, { scrollWheelZoom: false }).setView(center, parseInt(d.zoom, 10));
  L.tileLayer(d.tiles, { attribution: d.attribution }).addTo(map);
  var icon = L.icon({ iconUrl: d.icon, iconSize: [32, 32], iconAnchor: [16, 32], popupAnchor: [0, -32] });
  var popup = document.createElement("span");
  popup.textContent = d.popup;
  L.marker(center, { icon: icon }).addTo(map).bindPopup(popup);
})(document.currentScript.previousElementSibling);
</script>{{else if eq .Phase "error"}}<div class="map-error">{{.Message}}</div>{{else}}<div class="map-loading">{{.Message}}</div>{{end}}{{end}}`

const pageHTML = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Popup}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@{{.Version}}/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@{{.Version}}/dist/leaflet.js"></script>
</head>
<body>
{{template "fragment" .Fragment}}
</body>
</html>
{{end}}`

var templates = template.Must(template.Must(template.New("mapview").Parse(fragmentHTML)).Parse(pageHTML))

func (s State) fragment() fragmentData {
	data := fragmentData{
		Phase:   s.Phase.String(),
		Message: s.Message,
		Popup:   s.Location,
	}

	switch s.Phase {
	case PhaseLoading:
		data.Message = MessageLoading
	case PhaseReady:
		data.Lat = strconv.FormatFloat(s.Point.Lat, 'f', -1, 64)
		data.Lng = strconv.FormatFloat(s.Point.Lng, 'f', -1, 64)
		data.Zoom = DefaultZoom
		data.TileURL = TileURL
		data.Attribution = TileAttribution
		data.IconURL = MarkerIconPath
	}

	return data
}

// Render writes the HTML fragment for the state: a loading notice, an error
// notice or the map container with its marker.
func (s State) Render(w io.Writer) error {
	if err := templates.ExecuteTemplate(w, "fragment", s.fragment()); err != nil {
		return fmt.Errorf("rendering map fragment: %w", err)
	}

	return nil
}

// RenderPage writes a standalone HTML document around Render's fragment,
// loading Leaflet from a CDN.
func (s State) RenderPage(w io.Writer) error {
	data := struct {
		Popup    string
		Version  string
		Fragment fragmentData
	}{
		Popup:    s.Location,
		Version:  LeafletVersion,
		Fragment: s.fragment(),
	}

	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("rendering map page: %w", err)
	}

	return nil
}
