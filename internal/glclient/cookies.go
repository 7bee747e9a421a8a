package glclient

import (
	"bufio"
	"bytes"
	"net/http"
	"os"
	"strings"
)

// loadCookieFile reads a Netscape-format cookie file, the format written by
// curl and browser exports. Each entry is a tab-separated line of
// domain, include-subdomains, path, secure, expiry, name, value.
// Lines may carry an #HttpOnly_ domain prefix; other # lines are comments.
func loadCookieFile(path string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseCookieFile(data), nil
}

func parseCookieFile(data []byte) []*http.Cookie {
	var cookies []*http.Cookie
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimPrefix(line, "#HttpOnly_")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:  fields[5],
			Value: fields[6],
			Path:  fields[2],
		})
	}
	return cookies
}
