package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

const (
	perPage            = 100
	statusEnabled      = "enabled"
	visibilityPublic   = "public"
	defaultSetupOn     = "configured"
	billingProductHint = "advanced_security_product"
)

// RepoHost implements repositories.RepoHost on top of go-github, for both
// the public cloud and enterprise server instances.
type RepoHost struct {
	instance entities.HostingInstance
	client   *gh.Client
}

// NewRepoHost creates a RepoHost bound to one instance and one token.
func NewRepoHost(
	instance entities.HostingInstance,
	credential entities.Credential,
) (repositories.RepoHost, error) {
	client, err := newClient(instance, credential.Token, newHTTPClient(instance.RequestsPerSecond))
	if err != nil {
		return nil, err
	}
	return &RepoHost{instance: instance, client: client}, nil
}

func newClient(instance entities.HostingInstance, token string, httpClient *http.Client) (*gh.Client, error) {
	client := gh.NewClient(httpClient).WithAuthToken(token)

	endpoint := instance.APIEndpoint
	if endpoint == "" && instance.Kind == entities.InstanceKindServer {
		endpoint = entities.ServerAPIEndpoint(instance.Hostname)
	}
	if endpoint == "" || endpoint == entities.CloudAPIEndpoint {
		return client, nil
	}

	enterprise, err := client.WithEnterpriseURLs(endpoint, endpoint)
	if err != nil {
		return nil, entities.NewHostError("configure client", entities.ReasonMalformed,
			fmt.Errorf("invalid API endpoint %q for %s: %w", endpoint, instance.Name, err))
	}
	return enterprise, nil
}

// ListRepositories lists one page of an organization's repositories, falling
// back to a user account when no organization has that name.
func (h *RepoHost) ListRepositories(
	ctx context.Context,
	container entities.ContainerReference,
	page int,
) (entities.Page[entities.RepositoryReference], error) {
	listOpts := gh.ListOptions{PerPage: perPage, Page: page}

	repos, resp, err := h.client.Repositories.ListByOrg(ctx, container.Owner, &gh.RepositoryListByOrgOptions{
		ListOptions: listOpts,
	})
	if err != nil && entities.ReasonOf(classify("list organization repositories", err)) == entities.ReasonNotFound {
		repos, resp, err = h.client.Repositories.ListByUser(ctx, container.Owner, &gh.RepositoryListByUserOptions{
			Type:        "owner",
			ListOptions: listOpts,
		})
	}
	if err != nil {
		return entities.Page[entities.RepositoryReference]{}, classify("list repositories of "+container.Owner, err)
	}

	result := entities.Page[entities.RepositoryReference]{
		Items:    make([]entities.RepositoryReference, 0, len(repos)),
		NextPage: resp.NextPage,
	}
	for _, repo := range repos {
		if repo.GetName() == "" {
			return entities.Page[entities.RepositoryReference]{}, entities.NewHostError(
				"list repositories of "+container.Owner,
				entities.ReasonMalformedResponse,
				errors.New("repository without a name in response"),
			)
		}
		result.Items = append(result.Items, container.Repository(repo.GetName()))
	}
	return result, nil
}

// ListCommits lists one page of commits since the given time. An empty
// repository is reported as an empty last page.
func (h *RepoHost) ListCommits(
	ctx context.Context,
	repo entities.RepositoryReference,
	since time.Time,
	page int,
) (entities.Page[entities.CommitIdentity], error) {
	commits, resp, err := h.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, &gh.CommitsListOptions{
		Since:       since,
		ListOptions: gh.ListOptions{PerPage: perPage, Page: page},
	})
	if err != nil {
		if isEmptyRepository(err) {
			return entities.Page[entities.CommitIdentity]{}, nil
		}
		return entities.Page[entities.CommitIdentity]{}, classify("list commits of "+repo.FullName(), err)
	}

	result := entities.Page[entities.CommitIdentity]{
		Items:    make([]entities.CommitIdentity, 0, len(commits)),
		NextPage: resp.NextPage,
	}
	for _, commit := range commits {
		result.Items = append(result.Items, entities.CommitIdentity{
			AuthorEmail:    commit.GetCommit().GetAuthor().GetEmail(),
			CommitterEmail: commit.GetCommit().GetCommitter().GetEmail(),
		})
	}
	return result, nil
}

// EnsureSecurityCapability turns on advanced security for the repository.
// Public repositories on the cloud instance already have it.
func (h *RepoHost) EnsureSecurityCapability(
	ctx context.Context,
	repo entities.RepositoryReference,
) (entities.CapabilityStatus, error) {
	current, err := h.getRepository(ctx, repo)
	if err != nil {
		return "", err
	}

	if current.GetSecurityAndAnalysis().GetAdvancedSecurity().GetStatus() == statusEnabled {
		return entities.CapabilityAlreadyActive, nil
	}
	if h.instance.Kind == entities.InstanceKindCloud && current.GetVisibility() == visibilityPublic {
		return entities.CapabilityAlreadyActive, nil
	}

	err = h.editSecurity(ctx, repo, &gh.SecurityAndAnalysis{
		AdvancedSecurity: &gh.AdvancedSecurity{Status: gh.String(statusEnabled)},
	})
	if err != nil {
		return "", err
	}
	return entities.CapabilityActivated, nil
}

// EnableFeature turns one feature on, reporting already_enabled when the
// repository has it.
func (h *RepoHost) EnableFeature(
	ctx context.Context,
	repo entities.RepositoryReference,
	kind entities.FeatureKind,
) (entities.FeatureStatus, error) {
	switch kind {
	case entities.FeatureSecretScanning:
		return h.enableSecuritySetting(ctx, repo,
			func(s *gh.SecurityAndAnalysis) string { return s.GetSecretScanning().GetStatus() },
			&gh.SecurityAndAnalysis{SecretScanning: &gh.SecretScanning{Status: gh.String(statusEnabled)}},
		)
	case entities.FeaturePushProtection:
		return h.enableSecuritySetting(ctx, repo,
			func(s *gh.SecurityAndAnalysis) string { return s.GetSecretScanningPushProtection().GetStatus() },
			&gh.SecurityAndAnalysis{
				SecretScanningPushProtection: &gh.SecretScanningPushProtection{Status: gh.String(statusEnabled)},
			},
		)
	case entities.FeatureCodeScanning:
		return h.enableCodeScanning(ctx, repo)
	case entities.FeatureDependabotAlerts:
		return h.enableDependabotAlerts(ctx, repo)
	default:
		return "", entities.NewHostError("enable "+string(kind), entities.ReasonUnprocessable,
			fmt.Errorf("unsupported feature %q", kind))
	}
}

func (h *RepoHost) enableSecuritySetting(
	ctx context.Context,
	repo entities.RepositoryReference,
	status func(*gh.SecurityAndAnalysis) string,
	desired *gh.SecurityAndAnalysis,
) (entities.FeatureStatus, error) {
	current, err := h.getRepository(ctx, repo)
	if err != nil {
		return "", err
	}
	if status(current.GetSecurityAndAnalysis()) == statusEnabled {
		return entities.FeatureAlreadyEnabled, nil
	}
	if err = h.editSecurity(ctx, repo, desired); err != nil {
		return "", err
	}
	return entities.FeatureEnabled, nil
}

func (h *RepoHost) enableCodeScanning(
	ctx context.Context,
	repo entities.RepositoryReference,
) (entities.FeatureStatus, error) {
	op := "enable code scanning on " + repo.FullName()

	current, _, err := h.client.CodeScanning.GetDefaultSetupConfiguration(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", classify(op, err)
	}
	if current.GetState() == defaultSetupOn {
		return entities.FeatureAlreadyEnabled, nil
	}

	// the API answers 202 Accepted, which go-github surfaces as an AcceptedError
	_, _, err = h.client.CodeScanning.UpdateDefaultSetupConfiguration(ctx, repo.Owner, repo.Name,
		&gh.UpdateDefaultSetupConfigurationOptions{State: defaultSetupOn},
	)
	var accepted *gh.AcceptedError
	if err != nil && !errors.As(err, &accepted) {
		return "", classify(op, err)
	}
	return entities.FeatureEnabled, nil
}

func (h *RepoHost) enableDependabotAlerts(
	ctx context.Context,
	repo entities.RepositoryReference,
) (entities.FeatureStatus, error) {
	op := "enable dependabot alerts on " + repo.FullName()

	enabled, _, err := h.client.Repositories.GetVulnerabilityAlerts(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", classify(op, err)
	}
	if enabled {
		return entities.FeatureAlreadyEnabled, nil
	}

	if _, err = h.client.Repositories.EnableVulnerabilityAlerts(ctx, repo.Owner, repo.Name); err != nil {
		return "", classify(op, err)
	}
	return entities.FeatureEnabled, nil
}

func (h *RepoHost) getRepository(ctx context.Context, repo entities.RepositoryReference) (*gh.Repository, error) {
	current, _, err := h.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, classify("get repository "+repo.FullName(), err)
	}
	return current, nil
}

func (h *RepoHost) editSecurity(
	ctx context.Context,
	repo entities.RepositoryReference,
	settings *gh.SecurityAndAnalysis,
) error {
	_, _, err := h.client.Repositories.Edit(ctx, repo.Owner, repo.Name, &gh.Repository{
		SecurityAndAnalysis: settings,
	})
	if err != nil {
		return classify("update security settings of "+repo.FullName(), err)
	}
	return nil
}

// billingResponse mirrors the enterprise advanced security billing payload.
type billingResponse struct {
	TotalCommitters     int                 `json:"total_advanced_security_committers"`
	TotalCount          int                 `json:"total_count"`
	MaximumCommitters   int                 `json:"maximum_advanced_security_committers"`
	PurchasedCommitters int                 `json:"purchased_advanced_security_committers"`
	Repositories        []billingRepository `json:"repositories"`
}

type billingRepository struct {
	Name       string             `json:"name"`
	Committers int                `json:"advanced_security_committers"`
	Breakdown  []billingCommitter `json:"advanced_security_committers_breakdown"`
}

type billingCommitter struct {
	UserLogin       string `json:"user_login"`
	LastPushedDate  string `json:"last_pushed_date"`
	LastPushedEmail string `json:"last_pushed_email"`
}

// GetBillingSnapshot reads every page of the enterprise billing report.
// Purchased seats take precedence over the license maximum; both being zero
// is the unlimited sentinel.
func (h *RepoHost) GetBillingSnapshot(
	ctx context.Context,
	enterprise string,
	product entities.BillingProduct,
) (entities.LicenseSnapshot, error) {
	op := "get billing snapshot of " + enterprise
	snapshot := entities.LicenseSnapshot{Licensed: entities.IdentitySet{}}

	page := 1
	seen := 0
	for {
		body, nextPage, err := h.getBillingPage(ctx, enterprise, product, page)
		if err != nil {
			return entities.LicenseSnapshot{}, classifyBilling(op, err)
		}

		if page == 1 {
			snapshot.TotalSeats = body.PurchasedCommitters
			if snapshot.TotalSeats <= 0 {
				snapshot.TotalSeats = body.MaximumCommitters
			}
			snapshot.UsedSeats = body.TotalCommitters
		}
		for _, repository := range body.Repositories {
			for _, committer := range repository.Breakdown {
				snapshot.Licensed.Add(committer.LastPushedEmail)
			}
		}

		seen += len(body.Repositories)
		if nextPage <= page || (body.TotalCount > 0 && seen >= body.TotalCount) {
			return snapshot, nil
		}
		page = nextPage
	}
}

func (h *RepoHost) getBillingPage(
	ctx context.Context,
	enterprise string,
	product entities.BillingProduct,
	page int,
) (*billingResponse, int, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	if product != entities.BillingProductNone {
		query.Set(billingProductHint, string(product))
	}

	path := fmt.Sprintf("enterprises/%s/settings/billing/advanced-security?%s",
		url.PathEscape(enterprise), query.Encode())
	req, err := h.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}

	body := new(billingResponse)
	resp, err := h.client.Do(ctx, req, body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.NextPage, nil
}

// classifyBilling recognizes the rejection asking for a product parameter.
func classifyBilling(op string, err error) error {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && mentionsProduct(errResp) {
		return entities.NewHostError(op, entities.ReasonUnprocessable,
			fmt.Errorf("%w: %w", entities.ErrBillingProductRequired, err))
	}
	return classify(op, err)
}

func mentionsProduct(errResp *gh.ErrorResponse) bool {
	if errResp.Response != nil {
		code := errResp.Response.StatusCode
		if code != http.StatusBadRequest && code != http.StatusUnprocessableEntity {
			return false
		}
	}
	if strings.Contains(strings.ToLower(errResp.Message), billingProductHint) {
		return true
	}
	for _, detail := range errResp.Errors {
		if detail.Field == billingProductHint || strings.Contains(detail.Message, billingProductHint) {
			return true
		}
	}
	return false
}
