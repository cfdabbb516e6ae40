package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/classroom"
)

func TestClassroomApi_createAndJoin(t *testing.T) {
	env := setup(t)
	teach := env.createUser(t, "teach")
	jane := env.createUser(t, "jane")
	teachToken := env.getToken(t, teach)
	janeToken := env.getToken(t, jane)

	rec := env.do(http.MethodPost, "/v1/classrooms", "")
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}, rec)

	rec = env.do(http.MethodPost, "/v1/classrooms", teachToken,
		marshallObj(t, map[string]string{"name": "Algebra", "section": "A"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeObj(t, rec)
	classroomID := created["id"].(string)
	code := created["code"].(string)
	assert.Len(t, code, env.conf.ClassroomCodeLength, "owner sees the join code")
	assert.Equal(t, "Algebra", created["name"])
	assert.NotEmpty(t, created["banner_path"])
	assert.NotEmpty(t, created["theme_color"])

	// name is required
	rec = env.do(http.MethodPost, "/v1/classrooms", teachToken, marshallObj(t, map[string]string{"section": "A"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// join by code; lowercase input is normalized
	rec = env.do(http.MethodPut, "/v1/classrooms", janeToken,
		marshallObj(t, map[string]string{"code": " " + code + " "}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	joined := decodeObj(t, rec)
	assert.Equal(t, classroomID, joined["id"])
	assert.NotContains(t, joined, "code", "students never see the join code")

	rec = env.do(http.MethodPut, "/v1/classrooms", janeToken, marshallObj(t, map[string]string{"code": code}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{Error: "user is already in this classroom"}),
	}, rec)

	rec = env.do(http.MethodPut, "/v1/classrooms", janeToken, marshallObj(t, map[string]string{"code": "NOPE123"}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "invalid classroom code"}),
	}, rec)

	// both members list it
	for _, token := range []string{teachToken, janeToken} {
		rec = env.do(http.MethodGet, "/v1/classrooms", token)
		require.Equal(t, http.StatusOK, rec.Code)
		summaries := decodeList(t, rec)
		require.Len(t, summaries, 1)
		assert.Equal(t, classroomID, summaries[0].(map[string]interface{})["id"])
	}
}

func TestClassroomApi_memberAccess(t *testing.T) {
	env := setup(t)
	teach := env.createUser(t, "teach")
	jane := env.createUser(t, "jane")
	joe := env.createUser(t, "joe")

	c, err := env.clsSvc.Create(teach, classroom.NewClassroom{Name: "Algebra"})
	require.NoError(t, err)
	_, err = env.clsSvc.JoinByCode(jane, c.Code())
	require.NoError(t, err)

	tests := []httpTest{
		{
			name:     "outsider cannot retrieve",
			method:   http.MethodGet,
			path:     "/v1/classrooms/" + c.ID(),
			token:    env.getToken(t, joe),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "user is not in this classroom"}),
		},
		{
			name:     "student cannot update",
			method:   http.MethodPut,
			path:     "/v1/classrooms/" + c.ID(),
			body:     marshallObj(t, map[string]string{"name": "Hacked"}),
			token:    env.getToken(t, jane),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "user is not the classroom owner"}),
		},
		{
			name:     "student cannot create topics",
			method:   http.MethodPost,
			path:     "/v1/classrooms/" + c.ID() + "/topics",
			body:     marshallObj(t, map[string]string{"name": "Fractions"}),
			token:    env.getToken(t, jane),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "user is not the classroom owner"}),
		},
		{
			name:     "unknown classroom",
			method:   http.MethodGet,
			path:     "/v1/classrooms/nope",
			token:    env.getToken(t, jane),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "classroom not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}

	// owner deletes
	rec := env.do(http.MethodDelete, "/v1/classrooms/"+c.ID(), env.getToken(t, teach))
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, "/v1/classrooms/"+c.ID(), env.getToken(t, teach))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassroomApi_items(t *testing.T) {
	env := setup(t)
	teach := env.createUser(t, "teach")
	jane := env.createUser(t, "jane")
	joe := env.createUser(t, "joe")
	teachToken := env.getToken(t, teach)

	c, err := env.clsSvc.Create(teach, classroom.NewClassroom{Name: "Algebra"})
	require.NoError(t, err)
	_, err = env.clsSvc.JoinByCode(jane, c.Code())
	require.NoError(t, err)
	_, err = env.clsSvc.JoinByCode(joe, c.Code())
	require.NoError(t, err)

	base := "/v1/classrooms/" + c.ID()

	rec := env.do(http.MethodPost, base+"/topics", teachToken, marshallObj(t, map[string]string{"name": "Fractions"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	topicID := decodeObj(t, rec)["id"].(string)

	rec = env.do(http.MethodPost, base+"/items", teachToken,
		marshallObj(t, map[string]interface{}{"type": "Announcement", "announcement_text": "welcome"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, base+"/items", teachToken, marshallObj(t, map[string]interface{}{
		"type":                    "Assignment",
		"topic_id":                topicID,
		"title":                   "HW 1",
		"point":                   20,
		"assigned_to_students_id": []string{jane.ID},
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	itemID := decodeObj(t, rec)["id"].(string)

	// missing payload fields
	rec = env.do(http.MethodPost, base+"/items", teachToken, marshallObj(t, map[string]interface{}{"type": "Assignment"}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, map[string]string{"title": "title is required"}),
	}, rec)

	// jane sees both items, joe only the announcement
	rec = env.do(http.MethodGet, base+"/items", env.getToken(t, jane))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)
	rec = env.do(http.MethodGet, base+"/items", env.getToken(t, joe))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = env.do(http.MethodGet, base+"/items/"+itemID, env.getToken(t, joe))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "item not found"}),
	}, rec)

	// kind-mismatched update
	rec = env.do(http.MethodPut, base+"/items/"+itemID, teachToken,
		marshallObj(t, map[string]string{"announcement_text": "nope"}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{Error: "field not supported by this item type"}),
	}, rec)

	rec = env.do(http.MethodPut, base+"/items/"+itemID, teachToken, marshallObj(t, map[string]string{"title": "HW 1b"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "HW 1b", decodeObj(t, rec)["title"])

	rec = env.do(http.MethodDelete, base+"/items/"+itemID, teachToken)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClassroomApi_submissions(t *testing.T) {
	env := setup(t)
	teach := env.createUser(t, "teach")
	jane := env.createUser(t, "jane")
	teachToken := env.getToken(t, teach)
	janeToken := env.getToken(t, jane)

	c, err := env.clsSvc.Create(teach, classroom.NewClassroom{Name: "Algebra"})
	require.NoError(t, err)
	_, err = env.clsSvc.JoinByCode(jane, c.Code())
	require.NoError(t, err)
	it, err := env.clsSvc.CreateItem(teach, c.ID(), classroom.NewItem{Type: classroom.KindAssignment, Title: "HW 1"})
	require.NoError(t, err)

	base := "/v1/classrooms/" + c.ID() + "/items/" + it.ID

	// nothing turned in yet
	rec := env.do(http.MethodGet, base+"/submissions/@me", janeToken)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "submission not found"}),
	}, rec)

	// the owner does not turn in work
	rec = env.do(http.MethodPost, base+"/submissions/@me", teachToken, marshallObj(t, map[string]interface{}{}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marshallObj(t, httpErr{Error: "classroom owner cannot submit work"}),
	}, rec)

	rec = env.do(http.MethodPost, base+"/submissions/@me", janeToken, marshallObj(t, map[string]interface{}{}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	subID := decodeObj(t, rec)["id"].(string)

	rec = env.do(http.MethodPost, base+"/submissions/@me", janeToken, marshallObj(t, map[string]interface{}{}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{Error: "a submission already exists for this user"}),
	}, rec)

	// students revise their own turn-in in place
	rec = env.do(http.MethodPut, base+"/submissions/@me", janeToken, marshallObj(t, map[string]interface{}{}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, subID, decodeObj(t, rec)["id"])
	rec = env.do(http.MethodPut, base+"/submissions/@me", teachToken, marshallObj(t, map[string]interface{}{}))
	require.Equal(t, http.StatusForbidden, rec.Code)

	// only the owner lists
	rec = env.do(http.MethodGet, base+"/submissions", janeToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(http.MethodGet, base+"/submissions", teachToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeList(t, rec), 1)

	// grading
	rec = env.do(http.MethodPut, base+"/submissions/"+subID, janeToken, marshallObj(t, map[string]int{"point": 18}))
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(http.MethodPut, base+"/submissions/"+subID, teachToken, marshallObj(t, map[string]interface{}{}))
	require.Equal(t, http.StatusBadRequest, rec.Code, "point is required")
	rec = env.do(http.MethodPut, base+"/submissions/"+subID, teachToken, marshallObj(t, map[string]int{"point": 18}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	graded := decodeObj(t, rec)
	assert.Equal(t, float64(18), graded["point"])

	// submission comments
	rec = env.do(http.MethodPost, base+"/submissions/"+subID+"/comments", teachToken,
		marshallObj(t, map[string]string{"text": "well done"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPost, base+"/submissions/"+subID+"/comments", janeToken,
		marshallObj(t, map[string]string{"text": "thanks"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// item comments are open to all members
	rec = env.do(http.MethodPost, base+"/comments", janeToken, marshallObj(t, map[string]string{"text": "when is this due?"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestTaskApi_listMine(t *testing.T) {
	env := setup(t)
	teach := env.createUser(t, "teach")
	jane := env.createUser(t, "jane")

	c, err := env.clsSvc.Create(teach, classroom.NewClassroom{Name: "Algebra"})
	require.NoError(t, err)
	_, err = env.clsSvc.JoinByCode(jane, c.Code())
	require.NoError(t, err)
	_, err = env.clsSvc.CreateItem(teach, c.ID(), classroom.NewItem{Type: classroom.KindQuestion, Title: "Q1"})
	require.NoError(t, err)

	// default kind is to-do
	rec := env.do(http.MethodGet, "/v1/tasks/@me", env.getToken(t, jane))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tasks := decodeList(t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Assigned", tasks[0].(map[string]interface{})["status"])

	rec = env.do(http.MethodGet, "/v1/tasks/@me?type=to-review", env.getToken(t, teach))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tasks = decodeList(t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, float64(1), tasks[0].(map[string]interface{})["assigned_count"])

	rec = env.do(http.MethodGet, "/v1/tasks/@me?type=later", env.getToken(t, jane))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{Error: "invalid task kind"}),
	}, rec)
}
