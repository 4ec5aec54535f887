package repository

import (
	"bytes"
	"errors"
	"strings"

	"go.yaml.in/yaml/v3"
)

const frontMatterFence = "---"

// ErrMissingFrontMatter is returned when an MDX document does not open with a fence.
var ErrMissingFrontMatter = errors.New("mdx front matter missing")

// EncodeMDX renders front matter and body as `---\n<yaml>---\n\n<body>\n`.
func EncodeMDX(frontMatter interface{}, body string) ([]byte, error) {
	header, err := yaml.Marshal(frontMatter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterFence + "\n")
	buf.Write(header)
	buf.WriteString(frontMatterFence + "\n\n")
	buf.WriteString(strings.TrimRight(body, "\n"))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// DecodeMDX splits a document into front matter (decoded into out) and body.
func DecodeMDX(data []byte, out interface{}) (string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, frontMatterFence+"\n") {
		return "", ErrMissingFrontMatter
	}

	rest := text[len(frontMatterFence)+1:]
	var header, body string
	switch {
	case strings.HasPrefix(rest, frontMatterFence+"\n"):
		body = rest[len(frontMatterFence)+1:]
	default:
		end := strings.Index(rest, "\n"+frontMatterFence+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+frontMatterFence) {
				return "", ErrMissingFrontMatter
			}
			end = len(rest) - len(frontMatterFence) - 1
			header, body = rest[:end], ""
		} else {
			header = rest[:end]
			body = rest[end+len(frontMatterFence)+2:]
		}
	}

	if strings.TrimSpace(header) != "" {
		if err := yaml.Unmarshal([]byte(header), out); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(body), nil
}
