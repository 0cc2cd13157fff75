package lms

import (
	"context"
	"fmt"
	"strings"

	"github.com/s0up4200/lmsctl/dispatch"
)

const (
	maxFileNameLength    = 128
	maxDescriptionLength = 512
)

// CourseFile describes the repository file and registry activity created
// for a course package.
type CourseFile struct {
	RepositoryParentID int
	Repository         string
	RegistryParentID   int
	Registry           string
	ActivityName       string
	FileName           string
	Description        string
	Version            string
	ExternalID         string
	Duration           int
	Culture            string
}

// FileActivity is a SCORM package the service downloads from PackageURL.
type FileActivity struct {
	CourseFile
	PackageURL string
	Launch     *LaunchParameters
}

// AICCActivity is a course hosted elsewhere and launched through AICC.
type AICCActivity struct {
	CourseFile
	LaunchURL string
	Mobile    bool
}

// FileActivityUpdate replaces the package behind an existing activity.
type FileActivityUpdate struct {
	RegistryParentID int
	Registry         string
	ActivityName     string
	Description      string
	ActivityID       int
	FileID           int
	PackageURL       string
	Version          string
	ExternalID       string
	Duration         int
	Culture          string
}

// clip shortens s to one less than limit characters when it is longer than
// limit.
func clip(s string, limit int) string {
	if runes := []rune(s); len(runes) > limit {
		return string(runes[:limit-1])
	}
	return s
}

var entityFixer = strings.NewReplacer("&#39;", "'", "&#39", "'", "&#3", "'")

func fileDescription(s string) string {
	return entityFixer.Replace(clip(s, maxDescriptionLength))
}

func aiccLaunchURL(launchURL string) string {
	sep := "?"
	if strings.Contains(launchURL, "?") {
		sep = "&"
	}
	return launchURL + sep + "aicc_sid=[SID]&aicc_url=[URL]"
}

// courseTargets resolves the repository and registry a course is filed in.
func (c *Client) courseTargets(ctx context.Context, op string, spec CourseFile) (repository, registry *NodeInfo, err error) {
	repository, err = c.requireNode(ctx, op, ErrRepositoryNotFound, spec.RepositoryParentID, spec.Repository, NodeTypeRepository, 0)
	if err != nil {
		return nil, nil, err
	}
	registry, err = c.requireNode(ctx, op, ErrRegistryNotFound, spec.RegistryParentID, spec.Registry, NodeTypeStorage, NodeSubTypeRegistry)
	if err != nil {
		return nil, nil, err
	}
	return repository, registry, nil
}

func newCourseFile(spec CourseFile, repositoryID int, typ FileType) File {
	return File{
		Culture:         spec.Culture,
		Description:     fileDescription(spec.Description),
		ExternalID:      spec.ExternalID,
		ExternalVersion: spec.Version,
		Field2:          spec.ExternalID,
		Field3:          spec.Version,
		LicenseTypeID:   LicenseTypeCommercial,
		Name:            spec.FileName,
		RepositoryID:    repositoryID,
		TypeID:          typ,
	}
}

// AddFileActivity creates a SCORM file, has the service upload the package
// and creates a mobile compatible activity for it.
func (c *Client) AddFileActivity(ctx context.Context, spec FileActivity) (*ActivityInfo, error) {
	const op = "AddFileActivity"
	repository, registry, err := c.courseTargets(ctx, op, spec.CourseFile)
	if err != nil {
		return nil, err
	}

	file := newCourseFile(spec.CourseFile, repository.ObjectID, FileTypeSCORM)
	created, err := c.CreateFile(ctx, file)
	if err != nil {
		return nil, err
	}

	uploaded, err := c.UploadFile(ctx, created.ObjectID(), UpdatedFile{
		CID:     file.ExternalID,
		Url:     spec.PackageURL,
		Version: file.ExternalVersion,
	})
	if err != nil {
		return nil, err
	}
	if uploaded.Object == nil || uploaded.Object.CurrentVersion == nil {
		return nil, c.dispatcher.Report(op, &dispatch.ProtocolError{Op: op, Err: fmt.Errorf("upload of file %d returned no version", created.ObjectID())})
	}
	stored := uploaded.Object
	versionUID := stored.CurrentVersion.FileVersionUID.UUID

	activity := newActivity(spec.ActivityName, true, registry.ObjectID,
		newActivityVersion(stored.FileID, versionUID, spec.Duration, spec.Description))
	if spec.Launch.HasValues() {
		activity.LaunchData = spec.Launch.String()
	}

	result, err := c.CreateActivity(ctx, activity)
	if err != nil {
		return nil, err
	}

	info := &ActivityInfo{
		Name:            result.ObjectName(),
		RegistryID:      registry.ObjectID,
		ActivityID:      result.ObjectID(),
		ExternalID:      spec.ExternalID,
		ExternalVersion: spec.Version,
		FileID:          stored.FileID,
		FileVersionUID:  versionUID,
		Duration:        spec.Duration,
		Description:     spec.Description,
		Culture:         file.Culture,
	}
	c.logger.Info().
		Str("name", info.Name).
		Int("activity_id", info.ActivityID).
		Int("file_id", info.FileID).
		Msg("Added file activity")
	return info, nil
}

// AddAICCFileActivity creates an AICC file pointing at the launch URL, reads
// it back by external id and creates an activity for it. File and activity
// names are clipped to the service's column size.
func (c *Client) AddAICCFileActivity(ctx context.Context, spec AICCActivity) (*ActivityInfo, error) {
	const op = "AddAICCFileActivity"
	repository, registry, err := c.courseTargets(ctx, op, spec.CourseFile)
	if err != nil {
		return nil, err
	}

	file := newCourseFile(spec.CourseFile, repository.ObjectID, FileTypeAICC)
	file.Name = clip(file.Name, maxFileNameLength)
	file.URL = aiccLaunchURL(spec.LaunchURL)

	created, err := c.CreateFile(ctx, file)
	if err != nil {
		return nil, err
	}

	stored, err := c.GetFileByExternalID(ctx, spec.ExternalID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, c.precondition(op, fmt.Errorf("%w: %q: %w", ErrFileNotFound, spec.ExternalID, err))
	}

	activity := newActivity(clip(spec.ActivityName, maxFileNameLength), spec.Mobile, registry.ObjectID,
		newActivityVersion(created.ObjectID(), stored.FileVersionUID, spec.Duration, spec.Description))
	result, err := c.CreateActivity(ctx, activity)
	if err != nil {
		return nil, err
	}

	info := &ActivityInfo{
		Name:            result.ObjectName(),
		RegistryID:      registry.ObjectID,
		ActivityID:      result.ObjectID(),
		ExternalID:      spec.ExternalID,
		ExternalVersion: spec.Version,
		FileID:          created.ObjectID(),
		FileVersionUID:  stored.FileVersionUID,
		Duration:        spec.Duration,
		Description:     spec.Description,
		Culture:         file.Culture,
	}
	c.logger.Info().
		Str("name", info.Name).
		Int("activity_id", info.ActivityID).
		Int("file_id", info.FileID).
		Msg("Added AICC activity")
	return info, nil
}

// UpdateFileActivity uploads a new package to an existing file, points the
// activity at the new version and returns the activity as read back.
func (c *Client) UpdateFileActivity(ctx context.Context, spec FileActivityUpdate) (*ActivityInfo, error) {
	const op = "UpdateFileActivity"
	uploaded, err := c.UploadFile(ctx, spec.FileID, UpdatedFile{
		CID:     spec.ExternalID,
		Url:     spec.PackageURL,
		Version: spec.Version,
	})
	if err != nil {
		return nil, err
	}
	if uploaded.Object == nil || uploaded.Object.CurrentVersion == nil {
		return nil, c.dispatcher.Report(op, &dispatch.ProtocolError{Op: op, Err: fmt.Errorf("upload of file %d returned no version", spec.FileID)})
	}

	_, err = c.UpdateActivity(ctx, ActivityUpdate{
		ActivityID:     spec.ActivityID,
		FileID:         spec.FileID,
		FileVersionUID: uploaded.Object.CurrentVersion.FileVersionUID.UUID,
		Duration:       spec.Duration,
		Description:    spec.Description,
	})
	if err != nil {
		return nil, err
	}

	return c.GetActivity(ctx, ActivityQuery{
		ParentID:   spec.RegistryParentID,
		Registry:   spec.Registry,
		Name:       spec.ActivityName,
		ExternalID: spec.ExternalID,
		Culture:    spec.Culture,
	})
}
