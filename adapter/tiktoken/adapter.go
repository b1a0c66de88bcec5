package tiktoken

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Adapter counts prompt tokens with a BPE encoding. The encoding is loaded on first use, which
// may download its ranks file.
type Adapter struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

type Option func(*Adapter)

func WithEncoding(encoding string) Option {
	return func(a *Adapter) {
		a.encoding = encoding
	}
}

const defaultEncoding = "cl100k_base"

func New(options ...Option) *Adapter {
	a := &Adapter{
		encoding: defaultEncoding,
	}

	for _, o := range options {
		o(a)
	}

	return a
}

func (a *Adapter) Name() string {
	return fmt.Sprintf("tiktoken[%s]", a.encoding)
}

// Load fetches the encoding ahead of the first count. The first load may download the ranks
// file, so call it at startup to keep that out of request handling.
func (a *Adapter) Load() error {
	a.once.Do(func() {
		enc, err := tiktoken.GetEncoding(a.encoding)
		if err != nil {
			a.initErr = fmt.Errorf("init tiktoken encoding %s: %w", a.encoding, err)
			return
		}
		a.enc = enc
	})
	return a.initErr
}

func (a *Adapter) CountTokens(text string) (int, error) {
	if err := a.Load(); err != nil {
		return 0, err
	}
	return len(a.enc.Encode(text, nil, nil)), nil
}
