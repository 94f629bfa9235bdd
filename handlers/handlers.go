package handlers

import (
	"net/http"

	"postboard/models"
	"postboard/pagination"

	"github.com/gin-gonic/gin"
)

// View-models handed to the templating layer. Every page also answers
// `?format=json` with the same data, which is what the tests talk to.

type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type GroupInfo struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type PostInfo struct {
	ID       uint64     `json:"id"`
	Text     string     `json:"text"`
	Created  int64      `json:"created"`
	Author   UserInfo   `json:"author"`
	Group    *GroupInfo `json:"group,omitempty"`
	ImageURL string     `json:"image_url,omitempty"`
}

type CommentInfo struct {
	ID      uint64   `json:"id"`
	Text    string   `json:"text"`
	Created int64    `json:"created"`
	Author  UserInfo `json:"author"`
}

type PostPage = pagination.Page[PostInfo]

func userInfo(user *models.User) UserInfo {
	return UserInfo{ID: user.ID, Username: user.Username, Name: user.Name}
}

func groupInfo(group *models.Group) GroupInfo {
	return GroupInfo{
		ID:          group.ID,
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
}

func postInfo(post *models.Post) PostInfo {
	info := PostInfo{
		ID:      post.ID,
		Text:    post.Text,
		Created: post.CreatedAt,
		Author:  userInfo(&post.User),
	}
	if post.Group != nil && post.Group.ID != 0 {
		group := groupInfo(post.Group)
		info.Group = &group
	}
	if post.ImagePath != "" {
		info.ImageURL = "/media/" + post.ImagePath
	}
	return info
}

func postInfos(posts []models.Post) []PostInfo {
	result := make([]PostInfo, 0, len(posts))
	for i := range posts {
		result = append(result, postInfo(&posts[i]))
	}
	return result
}

func commentInfos(comments []models.Comment) []CommentInfo {
	result := make([]CommentInfo, 0, len(comments))
	for i := range comments {
		result = append(result, CommentInfo{
			ID:      comments[i].ID,
			Text:    comments[i].Text,
			Created: comments[i].CreatedAt,
			Author:  userInfo(&comments[i].User),
		})
	}
	return result
}

// render emits the page template, or the raw view-model for format=json.
func render(c *gin.Context, status int, template string, data gin.H) {
	if c.Query("format") == "json" {
		c.JSON(status, data)
		return
	}
	c.HTML(status, template, data)
}

func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "not_found.tmpl", gin.H{})
}
