// Package automation drives the asynchronous Bedrock Data Automation
// pipeline: upload the source document to S3, invoke the automation project,
// poll the job until it leaves Created/InProgress, then fetch the
// markdown-bearing standard output from the job's result metadata.
//
// Polling blocks the caller with a fixed interval between status checks and
// is bounded by a maximum attempt count; exhausting the budget yields
// ErrPollTimeout rather than waiting forever.
package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	bda "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	bdatypes "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"

	"invoiceparser/internal/config"
	"invoiceparser/internal/logger"
	"invoiceparser/internal/storage"
)

// Service runs documents through a Bedrock Data Automation project.
type Service struct {
	client       *bda.Client
	store        *storage.S3Store
	region       string
	accountID    string
	projectID    string
	profileName  string
	inputPath    string
	outputPath   string
	pollInterval time.Duration
	maxAttempts  int
	log          zerolog.Logger
}

// NewService creates an automation service from the application
// configuration. The AWS account ID (needed for ARN construction) is
// resolved once through STS.
func NewService(ctx context.Context, cfg *config.Config, store *storage.S3Store) (*Service, error) {
	const op = "NewService"

	if cfg.AWSRegion == "" || cfg.AWSProjectID == "" {
		return nil, WrapAutomationError(op, ErrInvalidConfiguration, "AWS_REGION and AWS_PROJECT_ID are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, WrapAutomationError(op, err, "failed to load AWS config")
	}

	identity, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, WrapAutomationError(op, err, "failed to resolve AWS account ID")
	}

	return &Service{
		client:       bda.NewFromConfig(awsCfg),
		store:        store,
		region:       cfg.AWSRegion,
		accountID:    aws.ToString(identity.Account),
		projectID:    cfg.AWSProjectID,
		profileName:  cfg.AWSProfileName,
		inputPath:    cfg.AWSInputPath,
		outputPath:   cfg.AWSOutputPath,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxPollAttempts,
		log:          logger.WithComponent("automation"),
	}, nil
}

// NewServiceWithClient creates an automation service with explicit
// dependencies (for testing).
func NewServiceWithClient(client *bda.Client, store *storage.S3Store, region, accountID, projectID, profileName, inputPath, outputPath string, pollInterval time.Duration, maxAttempts int) *Service {
	return &Service{
		client:       client,
		store:        store,
		region:       region,
		accountID:    accountID,
		projectID:    projectID,
		profileName:  profileName,
		inputPath:    inputPath,
		outputPath:   outputPath,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		log:          logger.WithComponent("automation"),
	}
}

// jobMetadata is the result-metadata object the job writes to its output URI.
type jobMetadata struct {
	OutputMetadata []struct {
		SegmentMetadata []struct {
			StandardOutputPath string `json:"standard_output_path"`
		} `json:"segment_metadata"`
	} `json:"output_metadata"`
}

// standardOutput is the markdown-bearing result object of a document job.
type standardOutput struct {
	Document struct {
		Representation struct {
			Markdown string `json:"markdown"`
		} `json:"representation"`
	} `json:"document"`
	Pages []struct {
		Representation struct {
			Markdown string `json:"markdown"`
		} `json:"representation"`
	} `json:"pages"`
}

// ProcessDocument uploads the file, runs the automation job to completion
// and returns the markdown content of its standard output.
func (s *Service) ProcessDocument(ctx context.Context, path string) (string, error) {
	const op = "ProcessDocument"

	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapAutomationError(op, err, "failed to read document")
	}

	fileName := filepath.Base(path)
	inputURI, err := s.store.Upload(ctx, fmt.Sprintf("%s/%s", s.inputPath, fileName), data)
	if err != nil {
		return "", WrapAutomationError(op, err, "failed to upload document")
	}
	outputURI := fmt.Sprintf("s3://%s/%s", s.store.Bucket(), s.outputPath)

	projectArn := fmt.Sprintf("arn:aws:bedrock:%s:%s:data-automation-project/%s", s.region, s.accountID, s.projectID)
	profileArn := fmt.Sprintf("arn:aws:bedrock:%s:%s:data-automation-profile/%s", s.region, s.accountID, s.profileName)

	invokeOut, err := s.client.InvokeDataAutomationAsync(ctx, &bda.InvokeDataAutomationAsyncInput{
		InputConfiguration:  &bdatypes.InputConfiguration{S3Uri: aws.String(inputURI)},
		OutputConfiguration: &bdatypes.OutputConfiguration{S3Uri: aws.String(outputURI)},
		DataAutomationConfiguration: &bdatypes.DataAutomationConfiguration{
			DataAutomationProjectArn: aws.String(projectArn),
		},
		DataAutomationProfileArn: aws.String(profileArn),
	})
	if err != nil {
		return "", WrapAutomationError(op, err, "failed to invoke data automation")
	}
	invocationArn := aws.ToString(invokeOut.InvocationArn)

	s.log.Info().
		Str("invocation_arn", invocationArn).
		Str("input_uri", inputURI).
		Msg("Data automation job started")

	metadataURI, err := s.waitForCompletion(ctx, invocationArn)
	if err != nil {
		return "", err
	}

	return s.fetchMarkdown(ctx, op, metadataURI)
}

// waitForCompletion polls the job until it reaches a terminal status and
// returns the job metadata URI on success. Terminal is any status other than
// Created/InProgress; a non-Success terminal status is an ErrJobFailed.
func (s *Service) waitForCompletion(ctx context.Context, invocationArn string) (string, error) {
	const op = "waitForCompletion"

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		statusOut, err := s.client.GetDataAutomationStatus(ctx, &bda.GetDataAutomationStatusInput{
			InvocationArn: aws.String(invocationArn),
		})
		if err != nil {
			return "", WrapAutomationError(op, err, "status check failed")
		}

		status := statusOut.Status
		if status != bdatypes.AutomationJobStatusCreated && status != bdatypes.AutomationJobStatusInProgress {
			if status != bdatypes.AutomationJobStatusSuccess {
				return "", &AutomationError{Op: op, Err: ErrJobFailed, Status: string(status)}
			}
			if statusOut.OutputConfiguration == nil || statusOut.OutputConfiguration.S3Uri == nil {
				return "", WrapAutomationError(op, ErrMalformedResult, "success status without output configuration")
			}
			return aws.ToString(statusOut.OutputConfiguration.S3Uri), nil
		}

		s.log.Debug().
			Str("status", string(status)).
			Int("attempt", attempt).
			Msg("Data automation job in progress")

		select {
		case <-ctx.Done():
			return "", WrapAutomationError(op, ctx.Err(), "canceled while polling")
		case <-time.After(s.pollInterval):
		}
	}

	return "", WrapAutomationError(op, ErrPollTimeout, fmt.Sprintf("no terminal status after %d attempts", s.maxAttempts))
}

// fetchMarkdown resolves the job metadata to the first segment's standard
// output object and returns its markdown content.
func (s *Service) fetchMarkdown(ctx context.Context, op, metadataURI string) (string, error) {
	metadataRaw, err := s.store.FetchURI(ctx, metadataURI)
	if err != nil {
		return "", WrapAutomationError(op, err, "failed to fetch job metadata")
	}

	var metadata jobMetadata
	if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
		return "", WrapAutomationError(op, err, "failed to decode job metadata")
	}
	if len(metadata.OutputMetadata) == 0 || len(metadata.OutputMetadata[0].SegmentMetadata) == 0 {
		return "", WrapAutomationError(op, ErrMalformedResult, "job metadata carries no segments")
	}

	stdPath := metadata.OutputMetadata[0].SegmentMetadata[0].StandardOutputPath
	stdRaw, err := s.store.FetchURI(ctx, stdPath)
	if err != nil {
		return "", WrapAutomationError(op, err, "failed to fetch standard output")
	}

	var std standardOutput
	if err := json.Unmarshal(stdRaw, &std); err != nil {
		return "", WrapAutomationError(op, err, "failed to decode standard output")
	}

	if md := std.Document.Representation.Markdown; strings.TrimSpace(md) != "" {
		return md, nil
	}
	var pages []string
	for _, page := range std.Pages {
		if strings.TrimSpace(page.Representation.Markdown) != "" {
			pages = append(pages, page.Representation.Markdown)
		}
	}
	if len(pages) == 0 {
		return "", WrapAutomationError(op, ErrMalformedResult, "standard output carries no markdown")
	}
	return strings.Join(pages, "\n\n"), nil
}
