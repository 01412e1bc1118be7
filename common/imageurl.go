package common

import "regexp"

// Matches drive.google.com/file/d/ID, drive.google.com/uc?...id=ID and
// drive.google.com/open?id=ID.
var driveLinkRe = regexp.MustCompile(`drive\.google\.com/(?:uc\?.*?id=|file/d/|open\?id=)([\w-]+)`)

// NormalizeImageURL turns a Google Drive share link into a directly
// embeddable image URL. Any other URL is returned untouched.
func NormalizeImageURL(url string) string {
	if url == "" {
		return ""
	}

	match := driveLinkRe.FindStringSubmatch(url)
	if len(match) == 2 && match[1] != "" {
		return "https://lh3.googleusercontent.com/d/" + match[1]
	}

	return url
}
