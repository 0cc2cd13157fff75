package lms

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/s0up4200/lmsctl/xmlwire"
)

const (
	playerHeight = 632
	playerWidth  = 1002

	defaultCulture = "EN"

	maxActivityNameLength = 256

	// SunsetDescription replaces the description of a sunset activity.
	SunsetDescription = "This course has been sunset (discontinued) and is no longer available. Please contact your Administrator if you have any questions."
)

const (
	pathActivity        = "/activity"
	pathActivityEncoded = "/activityencoded"
)

// ActivityQuery selects an activity by name and by the external id and
// culture of its current file.
type ActivityQuery struct {
	// ParentID and Registry name the registry node holding the activity.
	ParentID   int
	Registry   string
	Name       string
	ExternalID string
	Culture    string
}

// ActivityUpdate points an activity at a new file version.
type ActivityUpdate struct {
	ActivityID     int
	FileID         int
	FileVersionUID uuid.UUID
	Duration       int
	// Description falls back to the current one when blank.
	Description string
	// Name renames the activity when set.
	Name string
	// Encoded sends the update to the base64 encoding endpoint.
	Encoded bool
}

// matchesActivity reports whether a carries name and a current file with
// externalID in culture. Files without a culture count as EN.
func matchesActivity(a Activity, name, externalID, culture string) bool {
	if a.Name != name || a.CurrentVersion == nil || a.CurrentVersion.File == nil {
		return false
	}
	f := a.CurrentVersion.File
	if f.ExternalID != externalID {
		return false
	}
	if culture == defaultCulture && (f.Culture == defaultCulture || f.Culture == "") {
		return true
	}
	return f.Culture == culture
}

// GetActivity finds the one activity in the query's registry matching name,
// external id and culture.
func (c *Client) GetActivity(ctx context.Context, q ActivityQuery) (*ActivityInfo, error) {
	const op = "GetActivity"
	registry, err := c.requireNode(ctx, op, ErrRegistryNotFound, q.ParentID, q.Registry, NodeTypeStorage, NodeSubTypeRegistry)
	if err != nil {
		return nil, err
	}

	spec := SimpleQuerySpec{Name: q.Name, NodeID: &registry.NodeID}
	results, err := queryList[Activity](ctx, c, op, "/activities", spec)
	if err != nil {
		return nil, err
	}

	match := func(a Activity) bool { return matchesActivity(a, q.Name, q.ExternalID, q.Culture) }
	activity, err := single(c, op, results, match, fmt.Sprintf("activity %q (%s, %s)", q.Name, q.ExternalID, q.Culture))
	if err != nil {
		return nil, err
	}
	return activityInfo(activity, q.ParentID), nil
}

// GetActivityByContext searches under contextNodeID rather than a registry
// and returns the first match.
func (c *Client) GetActivityByContext(ctx context.Context, contextNodeID int, name, externalID, culture string) (*ActivityInfo, error) {
	const op = "GetActivityByContext"
	spec := SimpleQuerySpec{ContextNodeID: &contextNodeID, Name: name}
	results, err := queryList[Activity](ctx, c, op, "/activities", spec)
	if err != nil {
		return nil, err
	}

	for _, a := range results {
		if matchesActivity(a, name, externalID, culture) {
			return activityInfo(a, contextNodeID), nil
		}
	}
	return nil, fmt.Errorf("activity %q (%s, %s): %w", name, externalID, culture, ErrNotFound)
}

// GetActivities lists the SCORM activities under parentID. The registry
// named registryName must exist.
func (c *Client) GetActivities(ctx context.Context, parentID int, registryName string) ([]*ActivityInfo, error) {
	const op = "GetActivities"
	registry, err := c.requireNode(ctx, op, ErrRegistryNotFound, parentID, registryName, NodeTypeStorage, NodeSubTypeRegistry)
	if err != nil {
		return nil, err
	}

	spec := SimpleQuerySpec{ContextNodeID: &parentID, MaxResults: maxListResults}
	results, err := queryList[Activity](ctx, c, op, "/activities", spec)
	if err != nil {
		return nil, err
	}

	activities := make([]*ActivityInfo, 0, len(results))
	for _, a := range results {
		if a.ActivityType == nil || a.ActivityType.TypeID != activityTypeSCORMCBT {
			continue
		}
		activities = append(activities, activityInfo(a, registry.ParentID))
	}

	c.logger.Debug().
		Int("parent_id", parentID).
		Int("count", len(activities)).
		Msg("Retrieved activities")
	return activities, nil
}

// GetActivityByID loads an activity by id. A missing activity is reported
// as ErrActivityNotFound.
func (c *Client) GetActivityByID(ctx context.Context, activityID int) (*Activity, error) {
	return c.activityByID(ctx, "GetActivityByID", activityID)
}

func (c *Client) activityByID(ctx context.Context, op string, activityID int) (*Activity, error) {
	results, err := queryList[Activity](ctx, c, op, "/activities", SimpleQuerySpec{ObjectID: &activityID})
	if err != nil {
		return nil, err
	}
	activity, err := single(c, op, results, func(Activity) bool { return true }, fmt.Sprintf("activity %d", activityID))
	if err != nil {
		if ctx.Err() != nil || !IsNotFound(err) {
			return nil, err
		}
		return nil, c.precondition(op, fmt.Errorf("%w: %d", ErrActivityNotFound, activityID))
	}
	return &activity, nil
}

// CreateActivity creates a with the plain activity endpoint.
func (c *Client) CreateActivity(ctx context.Context, a Activity) (*ServiceResult[Activity], error) {
	return submit[Activity](ctx, c, "CreateActivity", http.MethodPost, pathActivity, nil, a)
}

// CreateActivityEncoded creates a with the base64 encoding endpoint.
func (c *Client) CreateActivityEncoded(ctx context.Context, a Activity) (*ServiceResult[Activity], error) {
	return submit[Activity](ctx, c, "CreateActivityEncoded", http.MethodPost, pathActivityEncoded, nil, a)
}

// UpdateActivityVersion saves a as is.
func (c *Client) UpdateActivityVersion(ctx context.Context, a Activity) (*ServiceResult[Activity], error) {
	return submit[Activity](ctx, c, "UpdateActivityVersion", http.MethodPut, pathActivity, nil, a)
}

// UpdateActivityVersionEncoded saves a through the base64 encoding endpoint.
func (c *Client) UpdateActivityVersionEncoded(ctx context.Context, a Activity) (*ServiceResult[Activity], error) {
	return submit[Activity](ctx, c, "UpdateActivityVersionEncoded", http.MethodPut, pathActivityEncoded, nil, a)
}

// UpdateActivity loads the activity, replaces its current version and saves
// it.
func (c *Client) UpdateActivity(ctx context.Context, u ActivityUpdate) (*ServiceResult[Activity], error) {
	const op = "UpdateActivity"
	activity, err := c.activityByID(ctx, op, u.ActivityID)
	if err != nil {
		return nil, err
	}

	if u.Name != "" {
		activity.Name = u.Name
	}
	description := u.Description
	if strings.TrimSpace(description) == "" && activity.CurrentVersion != nil {
		description = activity.CurrentVersion.Description
	}
	activity.CurrentVersion = newActivityVersion(u.FileID, u.FileVersionUID, u.Duration, description)

	if u.Encoded {
		return c.UpdateActivityVersionEncoded(ctx, *activity)
	}
	return c.UpdateActivityVersion(ctx, *activity)
}

// SunsetActivity retires an activity: its name gains a "(Sunset on M/D/YYYY)"
// suffix, Field4 records the file it used to point at, and its current
// version moves to the given placeholder file.
func (c *Client) SunsetActivity(ctx context.Context, activityID, fileID int, fileVersionUID uuid.UUID, date time.Time) (*ServiceResult[Activity], error) {
	const op = "SunsetActivity"
	activity, err := c.activityByID(ctx, op, activityID)
	if err != nil {
		return nil, err
	}

	previousFileID := 0
	if v := activity.CurrentVersion; v != nil && v.File != nil {
		previousFileID = v.File.FileID
	}

	activity.Name = sunsetName(activity.Name, date)
	activity.Field4 = fmt.Sprintf("PreviousFileID:%d", previousFileID)
	activity.CurrentVersion = newActivityVersion(fileID, fileVersionUID, 1, SunsetDescription)

	result, err := c.UpdateActivityVersion(ctx, *activity)
	if err != nil {
		return nil, err
	}
	c.logger.Info().
		Int("activity_id", activityID).
		Int("previous_file_id", previousFileID).
		Str("name", activity.Name).
		Msg("Sunset activity")
	return result, nil
}

// sunsetName appends the sunset suffix to name, cutting name short so the
// result stays within maxActivityNameLength characters.
func sunsetName(name string, date time.Time) string {
	suffix := fmt.Sprintf(" (Sunset on %s)", date.Format("1/2/2006"))
	keep := max(maxActivityNameLength-utf8.RuneCountInString(suffix), 0)
	if runes := []rune(name); len(runes) > keep {
		name = string(runes[:keep])
	}
	return name + suffix
}

// CreateLinkedActivity creates a copy of original in the registry that
// carries target's name under target, sharing the original's file version.
func (c *Client) CreateLinkedActivity(ctx context.Context, original *ActivityInfo, target *NodeInfo) (*ActivityInfo, error) {
	const op = "CreateLinkedActivity"
	registry, err := c.requireNode(ctx, op, ErrRegistryNotFound, target.NodeID, target.Name, NodeTypeStorage, NodeSubTypeRegistry)
	if err != nil {
		return nil, err
	}

	activity := newActivity(original.Name, true, registry.ObjectID,
		newActivityVersion(original.FileID, original.FileVersionUID, original.Duration, original.Description))
	result, err := c.CreateActivity(ctx, activity)
	if err != nil {
		return nil, err
	}

	return &ActivityInfo{
		Name:           result.ObjectName(),
		RegistryID:     registry.ObjectID,
		ActivityID:     result.ObjectID(),
		FileID:         original.FileID,
		FileVersionUID: original.FileVersionUID,
		Duration:       original.Duration,
		Description:    original.Description,
		Culture:        original.Culture,
	}, nil
}

func newActivity(name string, mobile bool, registryID int, version *ActivityVersion) Activity {
	return Activity{
		CurrentVersion:     version,
		IsMobileCompatible: mobile,
		Name:               name,
		RegistryID:         registryID,
		TypeID:             ActivityKindSCORMCBT,
	}
}

func newActivityVersion(fileID int, fileVersionUID uuid.UUID, duration int, description string) *ActivityVersion {
	return &ActivityVersion{
		Description:    description,
		Duration:       &duration,
		FileID:         &fileID,
		FileVersionUID: xmlwire.NewUUID(fileVersionUID),
		Height:         playerHeight,
		Width:          playerWidth,
	}
}
