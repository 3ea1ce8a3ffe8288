package config

import (
	"strings"

	"github.com/google/uuid"
)

// entryNamespace scopes derived entry ids to this application.
var entryNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("adaptive-cover/entry"))

// NewEntryID derives a 32-character hex entry identifier from the site id
// and the entry name. The same pair always yields the same id, so restore
// data survives restarts as long as neither is renamed.
func NewEntryID(siteID, name string) string {
	id := uuid.NewSHA1(entryNamespace, []byte(siteID+"/"+name))
	return strings.ReplaceAll(id.String(), "-", "")
}
