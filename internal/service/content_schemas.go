package service

import (
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/gema-site-api/internal/models"
)

const contributorsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "login"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "login": {"type": "string", "minLength": 1},
      "role": {"enum": ["maintainer", "contributor", "community"]},
      "accountType": {"enum": ["User", "Bot"]},
      "contributionCount": {"type": "integer", "minimum": 0}
    }
  }
}`

const newsletterSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["email"],
    "properties": {
      "email": {"type": "string", "minLength": 3},
      "confirmed": {"type": "boolean"},
      "tags": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

const adminConfigSchema = `{
  "type": "object",
  "required": ["users"],
  "properties": {
    "users": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["email", "role"],
        "properties": {
          "email": {"type": "string", "minLength": 3},
          "role": {"enum": ["admin", "super_admin"]}
        }
      }
    }
  }
}`

// dataTargets maps a data subtype to its repository path and schema.
var dataTargets = map[string]struct {
	path   string
	schema *jsonschema.Schema
}{
	models.DataContributors: {path: "data/contributors.json", schema: jsonschema.MustCompileString("contributors.schema.json", contributorsSchema)},
	models.DataNewsletter:   {path: "data/newsletter-subscribers.json", schema: jsonschema.MustCompileString("newsletter.schema.json", newsletterSchema)},
	models.DataConfig:       {path: "data/admin-config.json", schema: jsonschema.MustCompileString("admin-config.schema.json", adminConfigSchema)},
}
