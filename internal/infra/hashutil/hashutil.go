package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

// ToolSetETag returns a stable ETag for a tool record set and logs on
// failure instead of propagating it; an empty ETag just disables change
// detection for one refresh.
func ToolSetETag(logger *zap.Logger, records []domain.ToolRecord) string {
	data, err := json.Marshal(records)
	if err != nil {
		if logger != nil {
			logger.Warn("tool set hash failed", zap.Error(err))
		}
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
