package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LuiseFreese/mermaid-sub004/internal/retry"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

const maxErrorBodyBytes = 64 * 1024

// Client implements mdv.MetadataClient against the Dataverse Web API.
// All methods are safe for concurrent use; each call is retried on transient
// failures through the configured retry executor.
type Client struct {
	environmentURL string
	apiURL         string
	httpClient     *http.Client
	tokens         *CachedTokenSource
	retrier        *retry.Executor
	logger         mdv.Logger
	now            func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryExecutor sets the retry executor. Intended for tests that need
// deterministic backoff timing.
func WithRetryExecutor(retrier *retry.Executor) Option {
	return func(c *Client) {
		c.retrier = retrier
	}
}

// NewClient creates a metadata client for the environment. Panics if
// provider or logger is nil; returns an error for an unusable URL.
func NewClient(environmentURL string, provider mdv.TokenProvider, logger mdv.Logger, opts ...Option) (*Client, error) {
	if provider == nil {
		panic("provider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	parsed, err := url.Parse(environmentURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("environment URL %q is not an absolute URL: %w", environmentURL, mdv.ErrInvalidConfig)
	}

	base := strings.TrimRight(environmentURL, "/")
	c := &Client{
		environmentURL: base,
		apiURL:         base + "/api/data/" + mdv.WebAPIVersion,
		httpClient:     &http.Client{Timeout: 2 * time.Minute},
		tokens:         NewCachedTokenSource(provider),
		logger:         logger,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retrier == nil {
		c.retrier = retry.NewExecutor(
			retry.NewHTTPErrorClassifier(),
			retry.NewExponentialBackoff(mdv.DefaultRetryMaxAttempts),
		).WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("retrying after %s (attempt %d): %v", delay, attempt+1, err)
		})
	}
	return c, nil
}

// do issues one request. Non-2xx responses become a *StatusError carrying
// the status, the OData error body and any Retry-After hint. entityID is the
// id extracted from the OData-EntityId header on creates.
func (c *Client) do(ctx context.Context, method, path, solution string, body, out any) (entityID string, err error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("build %s %s request: %w", method, path, err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("x-ms-client-request-id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if solution != "" {
		req.Header.Set("MSCRM.SolutionUniqueName", solution)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.statusError(method, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return "", fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}

	return parseEntityID(resp.Header.Get("OData-EntityId")), nil
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	statusErr := &StatusError{
		Status: resp.StatusCode,
		Method: method,
		Path:   path,
	}

	var parsed odataErrorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		statusErr.Code = parsed.Error.Code
		statusErr.Message = parsed.Error.Message
	} else {
		statusErr.Message = strings.TrimSpace(string(raw))
	}

	if delay, ok := parseRetryAfter(resp.Header.Get("Retry-After"), c.now()); ok {
		statusErr.retryAfter = delay
		statusErr.hasRetryAfter = true
	}

	c.logger.Verbose("%s %s failed: %d %s", method, path, statusErr.Status, statusErr.Code)
	return statusErr
}

// parseEntityID extracts the id from an OData-EntityId header value such as
// "https://org.crm.dynamics.com/api/data/v9.2/publishers(<guid>)".
func parseEntityID(header string) string {
	open := strings.LastIndex(header, "(")
	end := strings.LastIndex(header, ")")
	if open < 0 || end <= open {
		return ""
	}
	return header[open+1 : end]
}

// execute runs op through the retry executor.
func (c *Client) execute(ctx context.Context, op func(ctx context.Context) error) error {
	return c.retrier.Execute(ctx, op)
}

// escapeODataString doubles single quotes for use inside an OData literal.
func escapeODataString(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// rawQuery percent-encodes values of key=value pairs, leaving the keys
// ($select, $filter) readable.
func rawQuery(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+"="+url.QueryEscape(pairs[i+1]))
	}
	return "?" + strings.Join(parts, "&")
}

// FindPublisher looks up a publisher by unique name. Returns (nil, nil) when
// absent.
func (c *Client) FindPublisher(ctx context.Context, uniqueName string) (*mdv.PublisherRef, error) {
	path := "/publishers" + rawQuery(
		"$select", "publisherid,uniquename,customizationprefix",
		"$filter", fmt.Sprintf("uniquename eq '%s'", escapeODataString(uniqueName)),
	)

	var result collection[publisherRow]
	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodGet, path, "", nil, &result)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(result.Value) == 0 {
		return nil, nil
	}

	row := result.Value[0]
	return &mdv.PublisherRef{ID: row.ID, UniqueName: row.UniqueName, Prefix: row.Prefix}, nil
}

// CreatePublisher creates a publisher and returns its reference.
func (c *Client) CreatePublisher(ctx context.Context, req mdv.PublisherRequest) (*mdv.PublisherRef, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	display := req.DisplayName
	if display == "" {
		display = req.UniqueName
	}
	payload := publisherPayload{
		UniqueName:        req.UniqueName,
		FriendlyName:      display,
		Prefix:            req.Prefix,
		OptionValuePrefix: req.OptionValuePrefix,
	}

	var id string
	err := c.execute(ctx, func(ctx context.Context) error {
		var err error
		id, err = c.do(ctx, http.MethodPost, "/publishers", "", payload, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("created publisher %s (%s)", req.UniqueName, req.Prefix)
	return &mdv.PublisherRef{ID: id, UniqueName: req.UniqueName, Prefix: req.Prefix}, nil
}

// FindSolution looks up a solution by unique name. Returns (nil, nil) when
// absent.
func (c *Client) FindSolution(ctx context.Context, uniqueName string) (*mdv.SolutionRef, error) {
	path := "/solutions" + rawQuery(
		"$select", "solutionid,uniquename",
		"$filter", fmt.Sprintf("uniquename eq '%s'", escapeODataString(uniqueName)),
	)

	var result collection[solutionRow]
	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodGet, path, "", nil, &result)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(result.Value) == 0 {
		return nil, nil
	}

	row := result.Value[0]
	return &mdv.SolutionRef{ID: row.ID, UniqueName: row.UniqueName}, nil
}

// CreateSolution creates a solution owned by the request's publisher.
func (c *Client) CreateSolution(ctx context.Context, req mdv.SolutionRequest) (*mdv.SolutionRef, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	display := req.DisplayName
	if display == "" {
		display = req.UniqueName
	}
	payload := solutionPayload{
		UniqueName:   req.UniqueName,
		FriendlyName: display,
		PublisherID:  "/publishers(" + req.PublisherID + ")",
	}

	var id string
	err := c.execute(ctx, func(ctx context.Context) error {
		var err error
		id, err = c.do(ctx, http.MethodPost, "/solutions", "", payload, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("created solution %s", req.UniqueName)
	return &mdv.SolutionRef{ID: id, UniqueName: req.UniqueName}, nil
}

// FindEntity looks up an entity definition by logical name. Returns
// (nil, nil) when absent.
func (c *Client) FindEntity(ctx context.Context, logicalName string) (*mdv.EntityRef, error) {
	path := fmt.Sprintf("/EntityDefinitions(LogicalName='%s')", escapeODataString(logicalName)) +
		rawQuery("$select", "MetadataId,LogicalName")

	var row entityDefinitionRow
	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodGet, path, "", nil, &row)
		return err
	})
	if errors.Is(err, mdv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &mdv.EntityRef{MetadataID: row.MetadataID, LogicalName: row.LogicalName}, nil
}

// CreateEntity creates a custom entity with its primary name column.
func (c *Client) CreateEntity(ctx context.Context, req mdv.EntityRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	primary, err := buildAttributePayload(req.PrimaryAttribute)
	if err != nil {
		return err
	}
	primary.IsPrimaryName = true

	collectionName := req.DisplayCollectionName
	if collectionName == "" {
		collectionName = req.DisplayName
	}

	payload := entityMetadata{
		ODataType:             "Microsoft.Dynamics.CRM.EntityMetadata",
		SchemaName:            req.SchemaName,
		DisplayName:           newLabel(req.DisplayName),
		DisplayCollectionName: newLabel(collectionName),
		OwnershipType:         "UserOwned",
		Attributes:            []attributeMetadata{*primary},
	}
	if req.Description != "" {
		payload.Description = newLabel(req.Description)
	}

	err = c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, "/EntityDefinitions", req.SolutionUniqueName, payload, nil)
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Info("created entity %s", req.LogicalName)
	return nil
}

// AttributeExists reports whether the entity already has the column.
func (c *Client) AttributeExists(ctx context.Context, entityLogicalName, attributeLogicalName string) (bool, error) {
	path := fmt.Sprintf("/EntityDefinitions(LogicalName='%s')/Attributes(LogicalName='%s')",
		escapeODataString(entityLogicalName), escapeODataString(attributeLogicalName)) +
		rawQuery("$select", "MetadataId")

	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodGet, path, "", nil, nil)
		return err
	})
	if errors.Is(err, mdv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateAttribute creates a column on an existing entity.
func (c *Client) CreateAttribute(ctx context.Context, req mdv.AttributeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	payload, err := buildAttributePayload(req)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/EntityDefinitions(LogicalName='%s')/Attributes", escapeODataString(req.EntityLogicalName))
	err = c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, path, req.SolutionUniqueName, payload, nil)
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Verbose("created attribute %s on %s", req.LogicalName, req.EntityLogicalName)
	return nil
}

// RelationshipExists reports whether a relationship with the schema name
// already exists.
func (c *Client) RelationshipExists(ctx context.Context, schemaName string) (bool, error) {
	path := fmt.Sprintf("/RelationshipDefinitions(SchemaName='%s')", escapeODataString(schemaName)) +
		rawQuery("$select", "MetadataId")

	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodGet, path, "", nil, nil)
		return err
	})
	if errors.Is(err, mdv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateOneToMany creates a one-to-many relationship and its lookup column
// on the referencing entity.
func (c *Client) CreateOneToMany(ctx context.Context, req mdv.OneToManyRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	lookupDisplay := req.LookupDisplayName
	if lookupDisplay == "" {
		lookupDisplay = req.LookupSchemaName
	}
	payload := oneToManyPayload{
		ODataType:         odataOneToManyRelationship,
		SchemaName:        req.SchemaName,
		ReferencedEntity:  req.ReferencedEntity,
		ReferencingEntity: req.ReferencingEntity,
		Lookup: &lookupAttributePayload{
			ODataType:     odataLookupAttribute,
			SchemaName:    req.LookupSchemaName,
			DisplayName:   newLabel(lookupDisplay),
			RequiredLevel: requiredLevelFor(false),
		},
		Cascade: cascadeFor(req.Cascade),
	}

	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, "/RelationshipDefinitions", req.SolutionUniqueName, payload, nil)
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Verbose("created relationship %s (%s -> %s)", req.SchemaName, req.ReferencingEntity, req.ReferencedEntity)
	return nil
}

// CreateManyToMany creates a many-to-many relationship with its intersect
// entity.
func (c *Client) CreateManyToMany(ctx context.Context, req mdv.ManyToManyRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	intersect := req.IntersectName
	if intersect == "" {
		intersect = strings.ToLower(req.SchemaName)
	}
	payload := manyToManyPayload{
		ODataType:     odataManyToManyRelationship,
		SchemaName:    req.SchemaName,
		Entity1:       req.Entity1,
		Entity2:       req.Entity2,
		IntersectName: intersect,
	}

	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, "/RelationshipDefinitions", req.SolutionUniqueName, payload, nil)
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Verbose("created relationship %s (%s <-> %s)", req.SchemaName, req.Entity1, req.Entity2)
	return nil
}

// ChoiceSetExists reports whether a global choice set with the name already
// exists.
func (c *Client) ChoiceSetExists(ctx context.Context, name string) (bool, error) {
	path := fmt.Sprintf("/GlobalOptionSetDefinitions(Name='%s')", escapeODataString(name))

	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodGet, path, "", nil, nil)
		return err
	})
	if errors.Is(err, mdv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateChoiceSet creates a global choice set.
func (c *Client) CreateChoiceSet(ctx context.Context, req mdv.ChoiceSetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	display := req.DisplayName
	if display == "" {
		display = req.Name
	}
	options := make([]optionMetadata, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, optionMetadata{Value: opt.Value, Label: newLabel(opt.Label)})
	}
	payload := optionSetMetadata{
		ODataType:     odataOptionSet,
		Name:          req.Name,
		DisplayName:   newLabel(display),
		IsGlobal:      true,
		OptionSetType: "Picklist",
		Options:       options,
	}

	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, "/GlobalOptionSetDefinitions", req.SolutionUniqueName, payload, nil)
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Verbose("created choice set %s (%d options)", req.Name, len(req.Options))
	return nil
}

// AddSolutionComponent adds an existing component to a solution.
func (c *Client) AddSolutionComponent(ctx context.Context, req mdv.SolutionComponentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	payload := addSolutionComponentPayload{
		ComponentID:           req.ComponentID,
		ComponentType:         req.ComponentType,
		SolutionUniqueName:    req.SolutionUniqueName,
		AddRequiredComponents: req.AddRequiredComponents,
	}

	err := c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, "/AddSolutionComponent", "", payload, nil)
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Verbose("added component %s to solution %s", req.ComponentID, req.SolutionUniqueName)
	return nil
}

// DeleteRelationship deletes a relationship by schema name.
func (c *Client) DeleteRelationship(ctx context.Context, schemaName string) error {
	path := fmt.Sprintf("/RelationshipDefinitions(SchemaName='%s')", escapeODataString(schemaName))
	return c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodDelete, path, "", nil, nil)
		return err
	})
}

// DeleteEntity deletes an entity definition by logical name.
func (c *Client) DeleteEntity(ctx context.Context, logicalName string) error {
	path := fmt.Sprintf("/EntityDefinitions(LogicalName='%s')", escapeODataString(logicalName))
	return c.execute(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodDelete, path, "", nil, nil)
		return err
	})
}

var _ mdv.MetadataClient = (*Client)(nil)
