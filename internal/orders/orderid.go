package orders

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderID returns an opaque correlation token: a base36 millisecond
// timestamp joined with a short random suffix, upper-cased. It is generated
// before any send so partial failures still carry a traceable id.
func NewOrderID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := uuid.NewString()[:8]
	return strings.ToUpper(ts + "-" + suffix)
}
