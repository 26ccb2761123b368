package models

import "time"

// Course (Курс)
type Course struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Title     LocalizedText `gorm:"embedded;embeddedPrefix:title_" json:"title"`
	ShortDesc LocalizedText `gorm:"embedded;embeddedPrefix:short_desc_" json:"short_desc"`
	FullDesc  LocalizedText `gorm:"embedded;embeddedPrefix:full_desc_" json:"full_desc"`
	Image     *string       `json:"image"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
}

// ImageName returns the stored image filename or "".
func (c Course) ImageName() string {
	if c.Image == nil {
		return ""
	}
	return *c.Image
}

// Lesson (Урок). Video - загруженный файл, VideoURL - внешняя ссылка; загрузка важнее ссылки.
type Lesson struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`

	CourseID uint          `gorm:"index" json:"course_id"`
	Title    LocalizedText `gorm:"embedded;embeddedPrefix:title_" json:"title"`
	Content  LocalizedText `gorm:"embedded;embeddedPrefix:content_" json:"content"`
	Position int           `json:"position"`
	Video    *string       `json:"video"`
	VideoURL *string       `gorm:"column:video_url" json:"video_url"`
}

// VideoName returns the uploaded video filename or "".
func (l Lesson) VideoName() string {
	if l.Video == nil {
		return ""
	}
	return *l.Video
}

// ExternalURL returns the external video link or "".
func (l Lesson) ExternalURL() string {
	if l.VideoURL == nil {
		return ""
	}
	return *l.VideoURL
}

// SetVideo applies the upload-wins rule: an uploaded file clears the URL, an
// empty URL is stored as NULL.
func (l *Lesson) SetVideo(upload, url string) {
	if upload != "" {
		l.Video = &upload
		l.VideoURL = nil
		return
	}
	if url == "" {
		l.VideoURL = nil
		return
	}
	l.VideoURL = &url
}

// HeroSlide - баннер на главной странице.
type HeroSlide struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	ImagePath *string       `json:"image_path"`
	Title     LocalizedText `gorm:"embedded;embeddedPrefix:title_" json:"title"`
	Desc      LocalizedText `gorm:"embedded;embeddedPrefix:desc_" json:"desc"`
}

// ImageName returns the stored image filename or "".
func (s HeroSlide) ImageName() string {
	if s.ImagePath == nil {
		return ""
	}
	return *s.ImagePath
}
