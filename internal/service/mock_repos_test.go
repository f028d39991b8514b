package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"scholchat/backend/internal/model"
	"scholchat/backend/internal/repository"
	pkgerrors "scholchat/backend/pkg/errors"
)

// ── 内存版 Repository，按与真实实现一致的语义模拟约束 ──
//
// mockAccessRequestRepo.Create 在已存在 pending 申请时返回 gorm.ErrDuplicatedKey，
// 模拟数据库的 pending 部分唯一索引；mockAccessGrantRepo.Create 同理模拟有效授权唯一索引。

var mockIDSeq int

func nextMockID(prefix string) string {
	mockIDSeq++
	return fmt.Sprintf("%s-%04d", prefix, mockIDSeq)
}

// ── 用户 ──

type mockUserRepo struct {
	users  map[string]*model.User
	getErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = nextMockID("user")
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── 班级 ──

type mockClassRepo struct {
	classes map[string]*model.SchoolClass
	getErr  error
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.SchoolClass)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.SchoolClass) error {
	if class.ClassID == "" {
		class.ClassID = nextMockID("class")
	}
	class.CreatedAt = time.Now()
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.SchoolClass, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockClassRepo) GetByIDs(_ context.Context, ids []string) ([]model.SchoolClass, error) {
	var result []model.SchoolClass
	for _, id := range ids {
		if c, ok := m.classes[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockClassRepo) ListByModerator(_ context.Context, moderatorID string) ([]model.SchoolClass, error) {
	var result []model.SchoolClass
	for _, c := range m.classes {
		if c.ModeratorID == moderatorID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.SchoolClass) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) UpdateActivationCode(_ context.Context, classID, code string) error {
	c, ok := m.classes[classID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ActivationCode = code
	return nil
}

// ── 学生 ──

type mockStudentRepo struct {
	students  map[string]*model.Student
	createErr error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	if student.StudentID == "" {
		student.StudentID = nextMockID("student")
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (m *mockStudentRepo) ListByClass(_ context.Context, classID string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.ClassID == classID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *mockStudentRepo) ListByClassAndIDs(_ context.Context, classID string, ids []string) ([]model.Student, error) {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var result []model.Student
	for _, s := range m.students {
		if s.ClassID == classID && idSet[s.StudentID] {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── 准入申请 ──

type mockAccessRequestRepo struct {
	requests  []*model.AccessRequest
	createErr error
}

func newMockAccessRequestRepo() *mockAccessRequestRepo {
	return &mockAccessRequestRepo{}
}

func (m *mockAccessRequestRepo) Create(_ context.Context, req *model.AccessRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	// 部分唯一索引语义：同一 (申请人, 班级) 至多一条 pending
	for _, r := range m.requests {
		if r.RequesterID == req.RequesterID && r.ClassID == req.ClassID && r.Status == model.RequestPending {
			return gorm.ErrDuplicatedKey
		}
	}
	if req.RequestID == "" {
		req.RequestID = nextMockID("req")
	}
	m.requests = append(m.requests, req)
	return nil
}

func (m *mockAccessRequestRepo) GetByID(_ context.Context, id string) (*model.AccessRequest, error) {
	for _, r := range m.requests {
		if r.RequestID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccessRequestRepo) GetPendingByUserClass(_ context.Context, requesterID, classID string) (*model.AccessRequest, error) {
	for _, r := range m.requests {
		if r.RequesterID == requesterID && r.ClassID == classID && r.Status == model.RequestPending {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccessRequestRepo) GetLatestByUserClass(_ context.Context, requesterID, classID string) (*model.AccessRequest, error) {
	var latest *model.AccessRequest
	for _, r := range m.requests {
		if r.RequesterID != requesterID || r.ClassID != classID {
			continue
		}
		if latest == nil || r.SubmittedAt.After(latest.SubmittedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockAccessRequestRepo) ListByClass(_ context.Context, classID string, status model.RequestStatus) ([]model.AccessRequest, error) {
	var result []model.AccessRequest
	for _, r := range m.requests {
		if r.ClassID != classID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockAccessRequestRepo) Transition(_ context.Context, requestID string, from, to model.RequestStatus, decidedBy, reason string) error {
	for _, r := range m.requests {
		if r.RequestID != requestID {
			continue
		}
		if r.Status != from {
			return pkgerrors.ErrStateConflict
		}
		now := time.Now()
		r.Status = to
		r.DecidedAt = &now
		r.DecidedBy = &decidedBy
		if reason != "" {
			r.RejectReason = reason
		}
		return nil
	}
	return pkgerrors.ErrStateConflict
}

// ── 准入授权 ──

type mockAccessGrantRepo struct {
	grants    []*model.AccessGrant
	createErr error
}

func newMockAccessGrantRepo() *mockAccessGrantRepo {
	return &mockAccessGrantRepo{}
}

func (m *mockAccessGrantRepo) Create(_ context.Context, grant *model.AccessGrant) error {
	if m.createErr != nil {
		return m.createErr
	}
	// 部分唯一索引语义：同一 (用户, 班级) 至多一条有效授权
	for _, g := range m.grants {
		if g.UserID == grant.UserID && g.ClassID == grant.ClassID && g.RevokedAt == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	if grant.GrantID == "" {
		grant.GrantID = nextMockID("grant")
	}
	m.grants = append(m.grants, grant)
	return nil
}

func (m *mockAccessGrantRepo) GetByID(_ context.Context, id string) (*model.AccessGrant, error) {
	for _, g := range m.grants {
		if g.GrantID == id {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccessGrantRepo) GetActiveByUserClass(_ context.Context, userID, classID string) (*model.AccessGrant, error) {
	for _, g := range m.grants {
		if g.UserID == userID && g.ClassID == classID && g.RevokedAt == nil {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccessGrantRepo) ListActiveByUser(_ context.Context, userID string) ([]model.AccessGrant, error) {
	var result []model.AccessGrant
	for _, g := range m.grants {
		if g.UserID == userID && g.RevokedAt == nil {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockAccessGrantRepo) ListActiveByClass(_ context.Context, classID string) ([]model.AccessGrant, error) {
	var result []model.AccessGrant
	for _, g := range m.grants {
		if g.ClassID == classID && g.RevokedAt == nil {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockAccessGrantRepo) Revoke(_ context.Context, userID, classID, revokedBy string) error {
	for _, g := range m.grants {
		if g.UserID == userID && g.ClassID == classID && g.RevokedAt == nil {
			now := time.Now()
			g.RevokedAt = &now
			g.RevokedBy = &revokedBy
			return nil
		}
	}
	return pkgerrors.ErrStateConflict
}

// ── 测试夹具 ──

type testRepos struct {
	repo     *repository.Repository
	users    *mockUserRepo
	classes  *mockClassRepo
	students *mockStudentRepo
	requests *mockAccessRequestRepo
	grants   *mockAccessGrantRepo
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	classes := newMockClassRepo()
	students := newMockStudentRepo()
	requests := newMockAccessRequestRepo()
	grants := newMockAccessGrantRepo()

	return &testRepos{
		repo: &repository.Repository{
			User:          users,
			Class:         classes,
			Student:       students,
			AccessRequest: requests,
			AccessGrant:   grants,
		},
		users:    users,
		classes:  classes,
		students: students,
		requests: requests,
		grants:   grants,
	}
}

func (tr *testRepos) seedUser(id string, role model.Role) *model.User {
	u := &model.User{
		UserID:   id,
		FullName: "用户 " + id,
		Email:    id + "@example.com",
		Role:     role,
	}
	tr.users.users[id] = u
	return u
}

func (tr *testRepos) seedClass(id, moderatorID, code string, majorMode bool) *model.SchoolClass {
	c := &model.SchoolClass{
		ClassID:         id,
		Name:            "班级 " + id,
		ActivationCode:  code,
		MajorAccessMode: majorMode,
		ModeratorID:     moderatorID,
	}
	tr.classes.classes[id] = c
	return c
}

func (tr *testRepos) seedStudent(id, classID, name string) *model.Student {
	s := &model.Student{
		StudentID: id,
		ClassID:   classID,
		FullName:  name,
	}
	tr.students.students[id] = s
	return s
}
