package twitter

// mentionsResponse mirrors the subset of the notifications payload the bot
// reads: a keyed map of tweet objects under globalObjects.
type mentionsResponse struct {
	GlobalObjects struct {
		Tweets map[string]tweet `json:"tweets"`
	} `json:"globalObjects"`
}

type tweet struct {
	IDStr     string `json:"id_str"`
	FullText  string `json:"full_text"`
	CreatedAt string `json:"created_at"`
}

// createTweetRequest is the CreateTweet GraphQL mutation body.
type createTweetRequest struct {
	Variables createTweetVariables `json:"variables"`
	Features  map[string]bool      `json:"features"`
	QueryID   string               `json:"queryId"`
}

type createTweetVariables struct {
	TweetText   string     `json:"tweet_text"`
	Reply       tweetReply `json:"reply"`
	DarkRequest bool       `json:"dark_request"`
}

type tweetReply struct {
	InReplyToTweetID    string   `json:"in_reply_to_tweet_id"`
	ExcludeReplyUserIDs []string `json:"exclude_reply_user_ids"`
}
