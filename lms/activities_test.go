package lms

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/lmsctl/dispatch"
)

func TestMatchesActivity(t *testing.T) {
	withFile := func(name, externalID, culture string) Activity {
		return Activity{
			Name: name,
			CurrentVersion: &ActivityVersion{
				File: &File{ExternalID: externalID, Culture: culture},
			},
		}
	}

	tests := []struct {
		name     string
		activity Activity
		culture  string
		want     bool
	}{
		{name: "same culture", activity: withFile("Forklift Basics", "FB-1", "FR"), culture: "FR", want: true},
		{name: "blank culture is EN", activity: withFile("Forklift Basics", "FB-1", ""), culture: "EN", want: true},
		{name: "EN file", activity: withFile("Forklift Basics", "FB-1", "EN"), culture: "EN", want: true},
		{name: "blank culture is not FR", activity: withFile("Forklift Basics", "FB-1", ""), culture: "FR"},
		{name: "other culture", activity: withFile("Forklift Basics", "FB-1", "DE"), culture: "EN"},
		{name: "other external id", activity: withFile("Forklift Basics", "FB-2", "EN"), culture: "EN"},
		{name: "other name", activity: withFile("Forklift Advanced", "FB-1", "EN"), culture: "EN"},
		{name: "no current version", activity: Activity{Name: "Forklift Basics"}, culture: "EN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesActivity(tt.activity, "Forklift Basics", "FB-1", tt.culture))
		})
	}
}

func TestSunsetName(t *testing.T) {
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Forklift Basics (Sunset on 3/5/2024)", sunsetName("Forklift Basics", date))

	long := sunsetName(strings.Repeat("a", 300), date)
	assert.Equal(t, maxActivityNameLength, utf8.RuneCountInString(long))
	assert.True(t, strings.HasSuffix(long, " (Sunset on 3/5/2024)"))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "abcde", clip("abcde", 5))
	assert.Equal(t, "abcd", clip("abcdef", 5))
	assert.Equal(t, "ééé", clip("éééééé", 4))
}

func TestFileDescription(t *testing.T) {
	assert.Equal(t, "Operator's guide", fileDescription("Operator&#39;s guide"))
	assert.Equal(t, "Operator's guide", fileDescription("Operator&#39s guide"))
	assert.Len(t, []rune(fileDescription(strings.Repeat("x", 600))), maxDescriptionLength-1)
}

func TestAICCLaunchURL(t *testing.T) {
	assert.Equal(t, "https://courses.example.com/launch?aicc_sid=[SID]&aicc_url=[URL]", aiccLaunchURL("https://courses.example.com/launch"))
	assert.Equal(t, "https://courses.example.com/launch?id=4&aicc_sid=[SID]&aicc_url=[URL]", aiccLaunchURL("https://courses.example.com/launch?id=4"))
}

func TestLaunchParametersString(t *testing.T) {
	standard := PlayModeStandardOnly
	eighty := 80.0
	big := 1234.5

	tests := []struct {
		name   string
		params *LaunchParameters
		want   string
		set    bool
	}{
		{name: "nil"},
		{name: "empty", params: &LaunchParameters{}},
		{name: "play mode", params: &LaunchParameters{PlayMode: &standard}, want: "playMode=standardOnly", set: true},
		{name: "score", params: &LaunchParameters{PassingScore: &eighty}, want: "passingScore=80", set: true},
		{name: "both", params: &LaunchParameters{PlayMode: &standard, PassingScore: &eighty}, want: "playMode=standardOnly&passingScore=80", set: true},
		{name: "grouped", params: &LaunchParameters{PassingScore: &big}, want: "passingScore=1,235", set: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.String())
			assert.Equal(t, tt.set, tt.params.HasValues())
		})
	}
}

func TestParsePlayMode(t *testing.T) {
	m, err := ParsePlayMode("FullScreenOnly")
	require.NoError(t, err)
	assert.Equal(t, PlayModeFullScreenOnly, m)

	_, err = ParsePlayMode("windowed")
	assert.Error(t, err)
}

const versionUID = "0b8e5d1a-2f3c-4d5e-9f60-718293a4b5c6"

// courseDirectory answers node lookups for the content repository and the
// safety registry under Acme Corp.
func courseDirectory(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)
	switch {
	case strings.Contains(body, "<NodeType>Repository</NodeType>"):
		w.Write([]byte(`<ArrayOfNode><Node><Name>Content</Name><NodeID>30</NodeID><ObjectID>130</ObjectID><ParentID>10</ParentID><TypeID>4</TypeID></Node></ArrayOfNode>`))
	case strings.Contains(body, "<NodeType>Storage</NodeType>"):
		w.Write([]byte(`<ArrayOfNode><Node><Name>Safety</Name><NodeID>31</NodeID><ObjectID>131</ObjectID><ParentID>10</ParentID><TypeID>5</TypeID><SubTypeID>6</SubTypeID></Node></ArrayOfNode>`))
	default:
		w.Write([]byte(`<ArrayOfNode/>`))
	}
}

func TestAddFileActivity(t *testing.T) {
	f := newFakeLMS(t)
	f.handle("POST /nodes", courseDirectory)
	f.reply("POST /file", `<ServiceResultOfFile>
		<ObjectIdentity><Name>forklift.zip</Name><ObjectID>500</ObjectID></ObjectIdentity>
		<Success>true</Success>
	</ServiceResultOfFile>`)
	f.reply("PUT /file/500/upload", `<ServiceResultOfFile>
		<Object><FileID>500</FileID><Name>forklift.zip</Name><CurrentVersion><FileVersionUID>`+versionUID+`</FileVersionUID></CurrentVersion></Object>
		<Success>true</Success>
	</ServiceResultOfFile>`)
	f.reply("POST /activity", `<ServiceResultOfActivity>
		<ObjectIdentity><Name>Forklift Basics</Name><ObjectID>700</ObjectID></ObjectIdentity>
		<Success>true</Success>
	</ServiceResultOfActivity>`)

	client := newTestClient(t, f)
	standard := PlayModeStandardOnly
	eighty := 80.0

	info, err := client.AddFileActivity(context.Background(), FileActivity{
		CourseFile: CourseFile{
			RepositoryParentID: 10,
			Repository:         "Content",
			RegistryParentID:   10,
			Registry:           "Safety",
			ActivityName:       "Forklift Basics",
			FileName:           "forklift.zip",
			Description:        "Operator&#39;s guide",
			Version:            "2",
			ExternalID:         "FB-1",
			Duration:           45,
			Culture:            "EN",
		},
		PackageURL: "https://cdn.example.com/forklift.zip",
		Launch:     &LaunchParameters{PlayMode: &standard, PassingScore: &eighty},
	})
	require.NoError(t, err)

	assert.Equal(t, 700, info.ActivityID)
	assert.Equal(t, "Forklift Basics", info.Name)
	assert.Equal(t, 131, info.RegistryID)
	assert.Equal(t, 500, info.FileID)
	assert.Equal(t, uuid.MustParse(versionUID), info.FileVersionUID)

	file := f.lastBody("POST /file")
	assert.Contains(t, file, "<RepositoryID>130</RepositoryID>")
	assert.Contains(t, file, "<Description>Operator&#39;s guide</Description>")
	assert.Contains(t, file, "<Field2>FB-1</Field2>")

	upload := f.lastBody("PUT /file/500/upload")
	assert.Contains(t, upload, "<Url>https://cdn.example.com/forklift.zip</Url>")
	assert.Contains(t, upload, "<CID>FB-1</CID>")

	activity := f.lastBody("POST /activity")
	assert.Contains(t, activity, "<RegistryID>131</RegistryID>")
	assert.Contains(t, activity, "<FileID>500</FileID>")
	assert.Contains(t, activity, "<FileVersionUID>"+versionUID+"</FileVersionUID>")
	assert.Contains(t, activity, "<LaunchData>playMode=standardOnly&amp;passingScore=80</LaunchData>")
	assert.Contains(t, activity, "<IsMobileCompatible>true</IsMobileCompatible>")
	assert.Contains(t, activity, "<Height>632</Height>")
}

func TestAddFileActivityMissingRepository(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", `<ArrayOfNode/>`)
	f.reply("POST /file", `<ServiceResultOfFile><Success>true</Success></ServiceResultOfFile>`)

	client := newTestClient(t, f)
	_, err := client.AddFileActivity(context.Background(), FileActivity{
		CourseFile: CourseFile{RepositoryParentID: 10, Repository: "Content", Registry: "Safety"},
	})
	require.ErrorIs(t, err, ErrRepositoryNotFound)
	assert.Equal(t, dispatch.KindPrecondition, dispatch.Classify(err))
	assert.Zero(t, f.count("POST /file"))
}

func TestSunsetActivity(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /activities", `<ArrayOfActivity><Activity>
		<ActivityID>700</ActivityID><Name>Forklift Basics</Name><RegistryID>131</RegistryID>
		<CurrentVersion><Description>Old</Description><File><FileID>500</FileID></File></CurrentVersion>
	</Activity></ArrayOfActivity>`)
	f.reply("PUT /activity", `<ServiceResultOfActivity><Success>true</Success></ServiceResultOfActivity>`)

	client := newTestClient(t, f)
	_, err := client.SunsetActivity(context.Background(), 700, 999, uuid.MustParse(versionUID), testNow)
	require.NoError(t, err)

	body := f.lastBody("PUT /activity")
	assert.Contains(t, body, "<Name>Forklift Basics (Sunset on 3/5/2024)</Name>")
	assert.Contains(t, body, "<Field4>PreviousFileID:500</Field4>")
	assert.Contains(t, body, "<FileID>999</FileID>")
	assert.Contains(t, body, "<Duration>1</Duration>")
}

func TestUpdateActivityKeepsDescription(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /activities", `<ArrayOfActivity><Activity>
		<ActivityID>700</ActivityID><Name>Forklift Basics</Name>
		<CurrentVersion><Description>Operator guide</Description></CurrentVersion>
	</Activity></ArrayOfActivity>`)
	f.reply("PUT /activityencoded", `<ServiceResultOfActivity><Success>true</Success></ServiceResultOfActivity>`)

	client := newTestClient(t, f)
	_, err := client.UpdateActivity(context.Background(), ActivityUpdate{
		ActivityID:     700,
		FileID:         501,
		FileVersionUID: uuid.MustParse(versionUID),
		Duration:       30,
		Description:    "  ",
		Encoded:        true,
	})
	require.NoError(t, err)
	assert.Contains(t, f.lastBody("PUT /activityencoded"), "<Description>Operator guide</Description>")
}

func TestUpdateActivityMissing(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /activities", `<ArrayOfActivity/>`)

	client := newTestClient(t, f)
	_, err := client.UpdateActivity(context.Background(), ActivityUpdate{ActivityID: 700})
	require.ErrorIs(t, err, ErrActivityNotFound)
	assert.Equal(t, dispatch.KindPrecondition, dispatch.Classify(err))
}
