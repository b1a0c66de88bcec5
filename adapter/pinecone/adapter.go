package pinecone

import (
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type Adapter struct {
	apiKey        string
	controllerURL string
	namespace     string
	textField     string
	client        *http.Client
	hosts         *cache.Cache
	logger        *zap.Logger
}

type Option func(*Adapter)

// WithControllerURL overrides the control plane used to resolve index hosts.
func WithControllerURL(url string) Option {
	return func(a *Adapter) {
		a.controllerURL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

func WithNamespace(namespace string) Option {
	return func(a *Adapter) {
		a.namespace = strings.TrimSpace(namespace)
	}
}

// WithTextField sets the metadata field holding the document text.
func WithTextField(field string) Option {
	return func(a *Adapter) {
		a.textField = field
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		a.client = client
	}
}

// WithIndexHost pins the data plane host of an index, skipping the control plane lookup.
func WithIndexHost(index, host string) Option {
	return func(a *Adapter) {
		a.hosts.Set(index, normalizeHost(host), cache.NoExpiration)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const (
	defaultControllerURL = "https://api.pinecone.io"
	defaultTextField     = "text"
	defaultTimeout       = 30 * time.Second
	hostTTL              = time.Hour
)

func New(apiKey string, options ...Option) *Adapter {
	a := &Adapter{
		apiKey:        apiKey,
		controllerURL: defaultControllerURL,
		textField:     defaultTextField,
		client:        &http.Client{Timeout: defaultTimeout},
		hosts:         cache.New(hostTTL, 2*hostTTL),
		logger:        zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

const adapterName = "vector-index/pinecone"

func (a *Adapter) Name() string {
	return adapterName
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}
