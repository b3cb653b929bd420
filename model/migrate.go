package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&User{},
	&Character{},
	&StatHistory{},
	&QuestTemplate{},
	&Quest{},
	&QuestCompletion{},
	&DailyStreak{},
	&Guild{},
	&GuildMembership{},
	&GuildQuest{},
	&GuildMessage{},
	&NutritionLog{},
	&Supplement{},
	&UserSupplement{},
	&SupplementLog{},
	&Achievement{},
	&UserAchievement{},
	&AuditLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
