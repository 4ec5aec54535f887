package models

import "time"

// Content resource types accepted by the commit pipeline.
const (
	ResourceBlog = "blog"
	ResourcePage = "page"
	ResourceData = "data"
)

// Content commit actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Data subtypes that may be written through the commit pipeline.
const (
	DataContributors = "contributors"
	DataNewsletter   = "newsletter"
	DataConfig       = "config"
)

// BlogPost is an MDX post stored under the content directory.
type BlogPost struct {
	Slug        string    `json:"slug" yaml:"-"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Date        time.Time `json:"date" yaml:"date"`
	Draft       bool      `json:"draft" yaml:"draft"`
	Newsletter  bool      `json:"newsletter" yaml:"newsletter"`
	Body        string    `json:"body,omitempty" yaml:"-"`
}

// Page is an MDX page stored under the content directory.
type Page struct {
	Slug        string `json:"slug" yaml:"-"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Body        string `json:"body,omitempty" yaml:"-"`
}
