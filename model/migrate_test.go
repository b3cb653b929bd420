package model_test

import (
	"testing"
	"time"

	"github.com/habitquest/server/model"
	"github.com/habitquest/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// User
	user := &model.User{Email: "test@example.com", Nickname: "tester", PasswordHash: "hash", Status: 1}
	require.NoError(t, db.Create(user).Error)
	assert.Greater(t, user.ID, int64(0))

	var found model.User
	require.NoError(t, db.First(&found, user.ID).Error)
	assert.Equal(t, "test@example.com", found.Email)

	// Character
	char := &model.Character{
		UserID: user.ID,
		Name:   "Hero",
		Level:  1,
		Stamina: 10, Strength: 10, Mental: 10, Endurance: 10,
		Cardio: 10, Flexibility: 10, Nutrition: 10, Recovery: 10,
		Gold: 100,
	}
	require.NoError(t, db.Create(char).Error)
	assert.Greater(t, char.ID, int64(0))

	// Quest
	quest := &model.Quest{
		UserID: user.ID, TemplateID: 1, Title: "Morning run",
		ExperienceReward: 50, GoldReward: 10,
		Status: model.QuestStatusAssigned, DueDate: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(quest).Error)

	// Guild
	guild := &model.Guild{Name: "TestGuild", MaxMembers: 6}
	require.NoError(t, db.Create(guild).Error)

	// GuildMembership
	gm := &model.GuildMembership{
		GuildID: guild.ID, UserID: user.ID,
		Role: model.GuildRoleLeader, Status: model.MembershipActive,
	}
	require.NoError(t, db.Create(gm).Error)

	// NutritionLog
	nl := &model.NutritionLog{
		UserID: user.ID, Date: time.Now(),
		MealType: "lunch", MealQuality: model.MealGood,
	}
	require.NoError(t, db.Create(nl).Error)

	// AuditLog
	al := &model.AuditLog{
		TraceID: "trace-001", Action: "auth.login",
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(al).Error)
}

func TestGuildMembership_UniquePerGuildAndUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, "a@example.com", "alice")

	guild := &model.Guild{Name: "Solo"}
	require.NoError(t, db.Create(guild).Error)

	require.NoError(t, db.Create(&model.GuildMembership{
		GuildID: guild.ID, UserID: user.ID, Role: model.GuildRoleLeader, Status: model.MembershipActive,
	}).Error)
	err := db.Create(&model.GuildMembership{
		GuildID: guild.ID, UserID: user.ID, Role: model.GuildRoleMember, Status: model.MembershipActive,
	}).Error
	assert.Error(t, err)
}
