package entities

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const gitSuffix = ".git"

// ErrMalformedReference is returned when an input string cannot be turned
// into a repository or container reference.
var ErrMalformedReference = errors.New("malformed reference")

// RepositoryReference locates a single repository on a hosting instance.
type RepositoryReference struct {
	Hostname string
	Owner    string
	Name     string
}

// Key returns the identity used for deduplication. Only the hostname is
// case-insensitive; owner and name are compared as given.
func (r RepositoryReference) Key() string {
	return strings.ToLower(r.Hostname) + "/" + r.Owner + "/" + r.Name
}

// Equal reports whether both references point at the same repository.
func (r RepositoryReference) Equal(other RepositoryReference) bool {
	return r.Key() == other.Key()
}

// FullName returns "owner/name".
func (r RepositoryReference) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r RepositoryReference) String() string {
	return "https://" + r.Hostname + "/" + r.FullName()
}

// ContainerReference denotes every repository owned by an organization or user.
type ContainerReference struct {
	Hostname string
	Owner    string
}

func (c ContainerReference) String() string {
	return "https://" + c.Hostname + "/" + c.Owner
}

// Repository builds a reference to a repository inside this container.
func (c ContainerReference) Repository(name string) RepositoryReference {
	return RepositoryReference{Hostname: c.Hostname, Owner: c.Owner, Name: name}
}

// ParsedReference is the result of classifying one raw input. Exactly one of
// Repository or Container is set.
type ParsedReference struct {
	Input      string
	Repository *RepositoryReference
	Container  *ContainerReference
}

// IsContainer reports whether the input denotes an owner rather than a repository.
func (p ParsedReference) IsContainer() bool {
	return p.Container != nil
}

// ParseReference classifies a URL-like string. One non-empty path segment
// after the host is a container, two or more is a repository (extra segments
// such as "/tree/main" are ignored). The scheme may be omitted.
func ParseReference(raw string) (ParsedReference, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return ParsedReference{}, fmt.Errorf("%w: empty input", ErrMalformedReference)
	}

	candidate := input
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return ParsedReference{}, fmt.Errorf("%w: %q: %w", ErrMalformedReference, input, err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return ParsedReference{}, fmt.Errorf("%w: %q: unsupported scheme %q", ErrMalformedReference, input, parsed.Scheme)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return ParsedReference{}, fmt.Errorf("%w: %q: missing host", ErrMalformedReference, input)
	}

	segments := pathSegments(parsed.Path)
	switch len(segments) {
	case 0:
		return ParsedReference{}, fmt.Errorf("%w: %q: no owner in path", ErrMalformedReference, input)
	case 1:
		return ParsedReference{
			Input:     input,
			Container: &ContainerReference{Hostname: hostname, Owner: segments[0]},
		}, nil
	default:
		name := strings.TrimSuffix(segments[1], gitSuffix)
		if name == "" {
			return ParsedReference{}, fmt.Errorf("%w: %q: empty repository name", ErrMalformedReference, input)
		}
		return ParsedReference{
			Input: input,
			Repository: &RepositoryReference{
				Hostname: hostname,
				Owner:    segments[0],
				Name:     name,
			},
		}, nil
	}
}

func pathSegments(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
