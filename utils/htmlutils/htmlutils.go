// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for inspecting rendered HTML.
// The page tests of mapview and server share it.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Text returns the trimmed text nodes under n joined by single spaces.
func Text(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := collectText(n, &sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func collectText(n *html.Node, sb *strings.Builder) error {
	if n.Type == html.TextNode {
		tmp := strings.TrimSpace(n.Data)

		// a REPLACEMENT CHARACTER (U+FFFD) means the page was decoded with
		// the wrong charset
		if strings.ContainsRune(tmp, utf8.RuneError) {
			return fmt.Errorf("charset mismatch found: `%s'", tmp)
		}

		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return nil
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err := collectText(child, sb); err != nil {
			return err
		}
	}

	return nil
}

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}

// AsReader converts an HTTP response body to an io.Reader with the correct charset.
func AsReader(resp *http.Response) (io.Reader, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("media type is %s", media)
	}

	rr, err := charset.NewReader(resp.Body, media)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// Attr returns the value of the attribute key of n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

// Dataset returns the data-* attributes of n keyed without the prefix.
func Dataset(n *html.Node) map[string]string {
	data := map[string]string{}

	for _, a := range n.Attr {
		if name, ok := strings.CutPrefix(a.Key, "data-"); ok {
			data[name] = a.Val
		}
	}

	return data
}

// FindByClass returns the first element, in document order, whose class
// list contains class.
func FindByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		if v, ok := Attr(n, "class"); ok && slices.Contains(strings.Fields(v), class) {
			return n
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := FindByClass(child, class); found != nil {
			return found
		}
	}

	return nil
}
