package routes

import (
	"github.com/gin-gonic/gin"

	c "github.com/appealdesk/appealdesk/settings/controllers"
)

func RegisterSettingsRoutes(r *gin.Engine) {
	// Practice profile
	r.GET("/practice", c.GetPractice)
	r.PUT("/practice", c.UpdatePractice)
	r.POST("/practice/logo", c.UploadLogo)

	// Account
	r.GET("/account/settings", c.GetAccountSettings)
	r.PUT("/account/settings", c.UpdateAccountSettings)
	r.POST("/account/password", c.ChangePassword)

	// Letter preferences
	r.GET("/letters/settings", c.GetLetterSettings)
	r.PUT("/letters/settings", c.UpdateLetterSettings)
	r.PUT("/letters/signature", c.UpdateSignature)

	// Notifications
	r.GET("/notifications/settings", c.GetNotificationSettings)
	r.PUT("/notifications/settings", c.UpdateNotificationSettings)
	r.PUT("/notifications/quota-threshold", c.UpdateQuotaThreshold)

	// Billing
	r.GET("/billing/plan", c.GetPlan)
	r.POST("/billing/upgrade", c.RequestUpgrade)

	// Team & Access
	r.GET("/team/members", c.ListTeamMembers)
	r.POST("/team/invite", c.InviteTeamMember)
	r.PUT("/team/member/:id", c.UpdateTeamMember)
	r.DELETE("/team/member/:id", c.DeleteTeamMember)
}
