package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ReferenceSource = (*Source)(nil)

// DefaultTimeout is the HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// ErrInvalidRepo is returned for a malformed repository reference.
var ErrInvalidRepo = errors.New("github: repository must be owner/repo[/path]")

// Config selects the documents to fetch.
type Config struct {
	// Owner and Repo name the repository.
	Owner string
	Repo  string

	// Ref is a branch, tag or commit; empty means the default branch.
	Ref string

	// PathPrefix limits fetching to a directory, e.g. "docs/labs".
	PathPrefix string

	// Token authenticates requests; empty uses anonymous access.
	Token string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond float64
}

// ParseRepo splits "owner/repo[/path...]" into its parts.
func ParseRepo(ref string) (owner, repo, prefix string, err error) {
	parts := strings.SplitN(strings.Trim(ref, "/ "), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, ref)
	}
	if len(parts) == 3 {
		prefix = strings.Trim(parts[2], "/")
	}
	return parts[0], parts[1], prefix, nil
}

// Source reads markdown reference documents from a GitHub repository.
type Source struct {
	cfg     Config
	client  *gh.Client
	limiter *RateLimiter
}

// NewSource creates a GitHub reference source.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, ErrInvalidRepo
	}
	cfg.PathPrefix = strings.Trim(cfg.PathPrefix, "/")

	httpClient := &http.Client{Timeout: DefaultTimeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = DefaultTimeout
	}

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		client.BaseURL = base
	}

	return &Source{
		cfg:     cfg,
		client:  client,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Name returns "github:owner/repo[/prefix]".
func (s *Source) Name() string {
	name := "github:" + s.cfg.Owner + "/" + s.cfg.Repo
	if s.cfg.PathPrefix != "" {
		name += "/" + s.cfg.PathPrefix
	}
	return name
}

// Fetch returns every markdown document under the path prefix, sorted by path.
func (s *Source) Fetch(ctx context.Context) ([]domain.ReferenceDocument, error) {
	ref, err := s.resolveRef(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	tree, resp, err := s.client.Git.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, ref, true)
	s.update(resp)
	if err != nil {
		return nil, wrapError(err, "get tree")
	}
	if tree.GetTruncated() {
		logger.Warn("GitHub tree for %s is truncated, some documents will be skipped", s.Name())
	}

	var entries []*gh.TreeEntry
	for _, entry := range tree.Entries {
		if s.wanted(entry) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].GetPath() < entries[j].GetPath() })
	logger.Debug("%s: %d markdown documents", s.Name(), len(entries))

	docs := make([]domain.ReferenceDocument, 0, len(entries))
	for _, entry := range entries {
		content, err := s.blob(ctx, entry.GetSHA())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.GetPath(), err)
		}
		docs = append(docs, domain.ReferenceDocument{
			Source:  s.source(entry.GetPath()),
			Path:    s.cfg.Owner + "/" + s.cfg.Repo + "/" + entry.GetPath(),
			Content: content,
		})
	}
	return docs, nil
}

func (s *Source) resolveRef(ctx context.Context) (string, error) {
	if s.cfg.Ref != "" {
		return s.cfg.Ref, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	repo, resp, err := s.client.Repositories.Get(ctx, s.cfg.Owner, s.cfg.Repo)
	s.update(resp)
	if err != nil {
		return "", wrapError(err, "get repository")
	}
	if branch := repo.GetDefaultBranch(); branch != "" {
		return branch, nil
	}
	return "HEAD", nil
}

func (s *Source) blob(ctx context.Context, sha string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	blob, resp, err := s.client.Git.GetBlob(ctx, s.cfg.Owner, s.cfg.Repo, sha)
	s.update(resp)
	if err != nil {
		return "", wrapError(err, "get blob")
	}

	if blob.GetEncoding() == "base64" {
		// GitHub wraps base64 content at 60 columns
		data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.GetContent(), "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode blob: %w", err)
		}
		return string(data), nil
	}
	return blob.GetContent(), nil
}

// wanted reports whether a tree entry is a markdown file under the prefix.
func (s *Source) wanted(entry *gh.TreeEntry) bool {
	if entry.GetType() != "blob" {
		return false
	}
	p := entry.GetPath()
	if !strings.EqualFold(path.Ext(p), ".md") {
		return false
	}
	if s.cfg.PathPrefix == "" {
		return true
	}
	return strings.HasPrefix(p, s.cfg.PathPrefix+"/")
}

// source names a document by its path below the prefix.
func (s *Source) source(p string) string {
	if s.cfg.PathPrefix == "" {
		return p
	}
	return strings.TrimPrefix(p, s.cfg.PathPrefix+"/")
}

func (s *Source) update(resp *gh.Response) {
	if resp != nil {
		s.limiter.UpdateFromResponse(resp.Response)
	}
}

// wrapError maps go-github errors onto domain errors.
func wrapError(err error, operation string) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: %w: resets at %s", operation, domain.ErrRateLimited,
			rateErr.Rate.Reset.Format(time.RFC3339))
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", operation, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
