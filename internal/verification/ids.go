package verification

import (
	"strconv"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidSize = 12

// IDGenerator mints the identifiers stamped on submissions
type IDGenerator interface {
	DocumentID() string
	SelfieID() string
	VerificationID(now time.Time) string
}

// idGenerator issues nanoid-based file ids and millisecond verification ids
// that never repeat within the process.
type idGenerator struct {
	mu      sync.Mutex
	lastVID int64
}

// processIDs is shared by machines that do not supply their own generator,
// keeping verification ids unique across users.
var processIDs = &idGenerator{}

// NewIDGenerator returns an independent generator
func NewIDGenerator() IDGenerator {
	return &idGenerator{}
}

func (g *idGenerator) DocumentID() string {
	return "doc_" + nanoid()
}

func (g *idGenerator) SelfieID() string {
	return "selfie_" + nanoid()
}

func (g *idGenerator) VerificationID(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.lastVID {
		ms = g.lastVID + 1
	}
	g.lastVID = ms
	return "VID" + strconv.FormatInt(ms, 10)
}

func nanoid() string {
	id, err := gonanoid.New(nanoidSize)
	if err != nil {
		// crypto/rand failure; fall back to the clock so submissions still succeed
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id
}
